/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package flow defines the columnar flow record that moves between
// pipeline stages, its Parquet encoding, and the supported schema
// versions.
package flow

import "github.com/google/uuid"

// SupportedVersions lists the record schema versions a stage may accept.
// Anything else fails the stage with a config error during schema
// discovery (see DetectFileVersion and each stage's DetectVersion).
var SupportedVersions = []int{3, 4}

// Severity is the discrete HBOS severity label derived from a partition's
// (low, medium, high, severe) thresholds.
//
// The emitted domain is exactly {None, Low, Medium, High, Severe}. Critical
// and Emergency exist only so the type has room to grow; no code path in
// this module ever assigns them. See DESIGN.md "Open Question Decisions"
// for why the numbering has a gap at 1.
type Severity uint8

const (
	SeverityNone      Severity = 0
	SeverityLow       Severity = 2
	SeverityMedium    Severity = 3
	SeverityHigh      Severity = 4
	SeveritySevere    Severity = 5
	SeverityCritical  Severity = 6
	SeverityEmergency Severity = 7
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeveritySevere:
		return "severe"
	case SeverityCritical:
		return "critical"
	case SeverityEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Trigger is the tri-state rule-engine annotation on a flow record.
type Trigger int8

const (
	TriggerIgnore Trigger = -1
	TriggerUnset  Trigger = 0
	TriggerSet    Trigger = 1
)

// Record is the unit of data passed between stages: one network flow,
// enriched with HBOS scoring and rule-trigger fields. Field order and
// types mirror the Parquet column schema fixed by the spec (stream,
// id, observe, stime/etime, dur/rtt, pcr, proto, saddr/daddr, ...).
type Record struct {
	Version uint8     `parquet:"version"`
	Stream  uint32    `parquet:"stream"`
	ID      uuid.UUID `parquet:"id"`
	Observe string    `parquet:"observe"`

	StartTime int64 `parquet:"stime,timestamp(microsecond)"`
	EndTime   int64 `parquet:"etime,timestamp(microsecond)"`
	Duration  uint32 `parquet:"dur"`
	RTT       uint32 `parquet:"rtt"`
	PCR       int32  `parquet:"pcr"`

	Proto string `parquet:"proto"`

	SrcAddr string `parquet:"saddr"`
	DstAddr string `parquet:"daddr"`
	SrcPort uint16 `parquet:"sport"`
	DstPort uint16 `parquet:"dport"`

	IFlags string `parquet:"iflags"`
	UFlags string `parquet:"uflags"`

	SrcTCPSeq uint32 `parquet:"stcpseq"`
	DstTCPSeq uint32 `parquet:"dtcpseq"`

	SrcVLAN uint16 `parquet:"svlan"`
	DstVLAN uint16 `parquet:"dvlan"`

	SrcPackets uint64 `parquet:"spkts"`
	DstPackets uint64 `parquet:"dpkts"`
	SrcBytes   uint64 `parquet:"sbytes"`
	DstBytes   uint64 `parquet:"dbytes"`

	SrcEntropy uint8 `parquet:"sentropy"`
	DstEntropy uint8 `parquet:"dentropy"`

	SrcIAT uint64 `parquet:"siat"`
	DstIAT uint64 `parquet:"diat"`

	SrcStdDev uint64 `parquet:"sstdev"`
	DstStdDev uint64 `parquet:"dstdev"`

	SrcTCPUrg uint32 `parquet:"stcpurg"`
	DstTCPUrg uint32 `parquet:"dtcpurg"`

	SrcSmallPktCnt uint32 `parquet:"ssmallpktcnt"`
	DstSmallPktCnt uint32 `parquet:"dsmallpktcnt"`
	SrcLargePktCnt uint32 `parquet:"slargepktcnt"`
	DstLargePktCnt uint32 `parquet:"dlargepktcnt"`

	SrcFirstNonEmptyCnt uint16 `parquet:"sfirstnonemptycnt"`
	DstFirstNonEmptyCnt uint16 `parquet:"dfirstnonemptycnt"`

	SrcMaxPktSize uint16 `parquet:"smaxpktsize"`
	DstMaxPktSize uint16 `parquet:"dmaxpktsize"`

	SrcStdevPayload uint16 `parquet:"sstdevpayload"`
	DstStdevPayload uint16 `parquet:"dstdevpayload"`

	SPD    string `parquet:"spd"`
	Reason string `parquet:"reason"`

	SrcMAC string `parquet:"smac"`
	DstMAC string `parquet:"dmac"`

	SrcCountry string `parquet:"scountry"`
	DstCountry string `parquet:"dcountry"`

	SrcASN    uint32 `parquet:"sasn"`
	DstASN    uint32 `parquet:"dasn"`
	SrcASNOrg string `parquet:"sasnorg"`
	DstASNOrg string `parquet:"dasnorg"`

	Orient string   `parquet:"orient"`
	Tag    []string `parquet:"tag"`

	HBOSScore    float64           `parquet:"hbos_score"`
	HBOSSeverity uint8             `parquet:"hbos_severity"`
	HBOSMap      map[string]float32 `parquet:"hbos_map"`

	NDPIAppID       string   `parquet:"ndpi_appid"`
	NDPICategory    string   `parquet:"ndpi_category"`
	NDPIRiskBits    uint64   `parquet:"ndpi_risk_bits"`
	NDPIRiskScore   uint32   `parquet:"ndpi_risk_score"`
	NDPIRiskSeverity uint8   `parquet:"ndpi_risk_severity"`
	NDPIRiskList    []string `parquet:"ndpi_risk_list"`

	Trigger int8 `parquet:"trigger"`
}

// PartitionKey is the (observe, dvlan, proto) scoping unit used by model
// training and scoring.
type PartitionKey struct {
	Observe string
	VLAN    uint16
	Proto   string
}

func (r Record) Partition() PartitionKey {
	return PartitionKey{Observe: r.Observe, VLAN: r.DstVLAN, Proto: r.Proto}
}

// Fields is the exhaustive, ordered list of flow-record field names valid
// as export/rule targets. Grounded on original_source's FIELDS table.
var Fields = []string{
	"version", "stream", "id", "observe", "stime", "etime", "dur", "rtt", "pcr", "proto",
	"saddr", "daddr", "sport", "dport", "iflags", "uflags", "stcpseq", "dtcpseq",
	"svlan", "dvlan", "spkts", "dpkts", "sbytes", "dbytes", "sentropy", "dentropy",
	"siat", "diat", "sstdev", "dstdev", "stcpurg", "dtcpurg",
	"ssmallpktcnt", "dsmallpktcnt", "slargepktcnt", "dlargepktcnt",
	"sfirstnonemptycnt", "dfirstnonemptycnt", "smaxpktsize", "dmaxpktsize",
	"sstdevpayload", "dstdevpayload", "spd", "reason", "smac", "dmac",
	"scountry", "dcountry", "sasn", "dasn", "sasnorg", "dasnorg", "orient",
	"tag", "hbos_score", "hbos_severity", "hbos_map", "ndpi_appid",
	"ndpi_category", "ndpi_risk_bits", "ndpi_risk_score", "ndpi_risk_severity",
	"ndpi_risk_list", "trigger",
}

// IsField reports whether name is a recognized flow-record field.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// DefaultHBOSFeatures is the default feature set trained into an HBOS
// model, per spec.md §3 "HBOS model".
var DefaultHBOSFeatures = []string{
	"stime", "dur", "rtt", "pcr", "proto", "saddr", "daddr", "sport", "dport",
	"iflags", "uflags", "dvlan", "sbytes", "dbytes", "spkts", "dpkts",
	"sentropy", "dentropy", "siat", "diat",
	"ssmallpktcnt", "dsmallpktcnt", "slargepktcnt", "dlargepktcnt",
	"sfirstnonemptycnt", "dfirstnonemptycnt", "smaxpktsize", "dmaxpktsize",
	"sstdevpayload", "dstdevpayload", "sasn", "dasn", "scountry", "dcountry",
	"spd", "ndpi_appid", "orient",
}
