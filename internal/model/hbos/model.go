/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package hbos implements the Histogram-Based Outlier Score model: the
// per-partition collection of feature histograms, the score/severity
// computation, and the nDPI risk-bit expansion used to build trigger
// data. Grounded on
// original_source/gnat/src/model/histogram/histogram_model.rs.
package hbos

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/histogram"
)

// FeatureSpec describes how one flow-record field is trained into a
// histogram: which kind, which modulus (category kinds only), and
// whether the literal "unknown" value is excluded from training.
type FeatureSpec struct {
	Name        string
	Kind        histogram.Kind
	Modulus     int64
	SkipUnknown bool
}

// DefaultFeatureSpecs is the dispatch table for flow.DefaultHBOSFeatures,
// grounded on spec.md section 3's histogram family table. pcr/sentropy/
// dentropy carry no modulus per that table's explicit "none" override,
// even though the original Rust source also defines unused
// DEFAULT_PCR_MODULUS/DEFAULT_ENTROPY_MODULUS constants.
var DefaultFeatureSpecs = []FeatureSpec{
	{Name: "stime", Kind: histogram.KindTimeCategory},

	{Name: "dur", Kind: histogram.KindNumeric},
	{Name: "rtt", Kind: histogram.KindNumeric},
	{Name: "sbytes", Kind: histogram.KindNumeric},
	{Name: "dbytes", Kind: histogram.KindNumeric},
	{Name: "spkts", Kind: histogram.KindNumeric},
	{Name: "dpkts", Kind: histogram.KindNumeric},
	{Name: "siat", Kind: histogram.KindNumeric},
	{Name: "diat", Kind: histogram.KindNumeric},
	{Name: "ssmallpktcnt", Kind: histogram.KindNumeric},
	{Name: "dsmallpktcnt", Kind: histogram.KindNumeric},
	{Name: "slargepktcnt", Kind: histogram.KindNumeric},
	{Name: "dlargepktcnt", Kind: histogram.KindNumeric},
	{Name: "sfirstnonemptycnt", Kind: histogram.KindNumeric},
	{Name: "dfirstnonemptycnt", Kind: histogram.KindNumeric},
	{Name: "smaxpktsize", Kind: histogram.KindNumeric},
	{Name: "dmaxpktsize", Kind: histogram.KindNumeric},
	{Name: "sstdevpayload", Kind: histogram.KindNumeric},
	{Name: "dstdevpayload", Kind: histogram.KindNumeric},

	{Name: "pcr", Kind: histogram.KindNumericCategory, Modulus: histogram.NoModulus},
	{Name: "sentropy", Kind: histogram.KindNumericCategory, Modulus: histogram.NoModulus},
	{Name: "dentropy", Kind: histogram.KindNumericCategory, Modulus: histogram.NoModulus},

	{Name: "proto", Kind: histogram.KindStringCategory},
	{Name: "iflags", Kind: histogram.KindStringCategory},
	{Name: "uflags", Kind: histogram.KindStringCategory},
	{Name: "scountry", Kind: histogram.KindStringCategory},
	{Name: "dcountry", Kind: histogram.KindStringCategory},
	{Name: "spd", Kind: histogram.KindStringCategory},
	{Name: "orient", Kind: histogram.KindStringCategory},
	{Name: "ndpi_appid", Kind: histogram.KindStringCategory, SkipUnknown: true},

	{Name: "saddr", Kind: histogram.KindIPAddrCategory},
	{Name: "daddr", Kind: histogram.KindIPAddrCategory},

	{Name: "sport", Kind: histogram.KindNumericCategory, Modulus: histogram.DefaultPortModulus},
	{Name: "dport", Kind: histogram.KindNumericCategory, Modulus: histogram.DefaultPortModulus},
	{Name: "dvlan", Kind: histogram.KindNumericCategory, Modulus: histogram.DefaultVLANModulus},
	{Name: "sasn", Kind: histogram.KindNumericCategory, Modulus: histogram.DefaultASNModulus},
	{Name: "dasn", Kind: histogram.KindNumericCategory, Modulus: histogram.DefaultASNModulus},
}

// numericValue extracts the int64 training/scoring value of a numeric or
// numeric-category feature from a record.
func numericValue(name string, r flow.Record) int64 {
	switch name {
	case "dur":
		return int64(r.Duration)
	case "rtt":
		return int64(r.RTT)
	case "sbytes":
		return int64(r.SrcBytes)
	case "dbytes":
		return int64(r.DstBytes)
	case "spkts":
		return int64(r.SrcPackets)
	case "dpkts":
		return int64(r.DstPackets)
	case "siat":
		return int64(r.SrcIAT)
	case "diat":
		return int64(r.DstIAT)
	case "ssmallpktcnt":
		return int64(r.SrcSmallPktCnt)
	case "dsmallpktcnt":
		return int64(r.DstSmallPktCnt)
	case "slargepktcnt":
		return int64(r.SrcLargePktCnt)
	case "dlargepktcnt":
		return int64(r.DstLargePktCnt)
	case "sfirstnonemptycnt":
		return int64(r.SrcFirstNonEmptyCnt)
	case "dfirstnonemptycnt":
		return int64(r.DstFirstNonEmptyCnt)
	case "smaxpktsize":
		return int64(r.SrcMaxPktSize)
	case "dmaxpktsize":
		return int64(r.DstMaxPktSize)
	case "sstdevpayload":
		return int64(r.SrcStdevPayload)
	case "dstdevpayload":
		return int64(r.DstStdevPayload)
	case "pcr":
		return int64(r.PCR)
	case "sentropy":
		return int64(r.SrcEntropy)
	case "dentropy":
		return int64(r.DstEntropy)
	case "sport":
		return int64(r.SrcPort)
	case "dport":
		return int64(r.DstPort)
	case "dvlan":
		return int64(r.DstVLAN)
	case "sasn":
		return int64(r.SrcASN)
	case "dasn":
		return int64(r.DstASN)
	default:
		panic(fmt.Sprintf("hbos: %q is not a numeric feature", name))
	}
}

// stringValue extracts the string training/scoring value of a
// string-category or ip-address-category feature.
func stringValue(name string, r flow.Record) string {
	switch name {
	case "proto":
		return r.Proto
	case "iflags":
		return r.IFlags
	case "uflags":
		return r.UFlags
	case "scountry":
		return r.SrcCountry
	case "dcountry":
		return r.DstCountry
	case "spd":
		return r.SPD
	case "orient":
		return r.Orient
	case "ndpi_appid":
		return r.NDPIAppID
	case "saddr":
		return r.SrcAddr
	case "daddr":
		return r.DstAddr
	default:
		panic(fmt.Sprintf("hbos: %q is not a string feature", name))
	}
}

// FeatureHistogram adapts one of the five concrete histogram.Histogram
// implementations behind a single Probability-by-record call, unifying
// their otherwise incompatible typed Probability signatures.
type FeatureHistogram struct {
	Spec      FeatureSpec
	Histogram histogram.Histogram
}

// ProbabilityFor dispatches to the wrapped histogram's typed Probability
// method using the value this feature extracts from r.
func (f FeatureHistogram) ProbabilityFor(r flow.Record) float64 {
	switch h := f.Histogram.(type) {
	case *histogram.NumberHistogram:
		return h.Probability(numericValue(f.Spec.Name, r))
	case *histogram.NumericCategoryHistogram:
		return h.Probability(numericValue(f.Spec.Name, r))
	case *histogram.StringCategoryHistogram:
		return h.Probability(stringValue(f.Spec.Name, r))
	case *histogram.IPAddrCategoryHistogram:
		return h.Probability(stringValue(f.Spec.Name, r))
	case *histogram.TimeCategoryHistogram:
		return h.Probability(r.StartTime)
	default:
		panic(fmt.Sprintf("hbos: unsupported histogram type for feature %q", f.Spec.Name))
	}
}

// PartitionModel is the trained HBOS model for one (observe, dvlan,
// proto) partition: one feature histogram per trained column plus the
// derived severity thresholds.
type PartitionModel struct {
	Key        flow.PartitionKey
	Features   []FeatureHistogram
	Thresholds Thresholds
	Stats      Stats
}

// Stats holds the descriptive statistics over a partition's training
// score column, persisted alongside the severity thresholds in
// hbos_summary.
type Stats struct {
	Min, Max, Skewness, Avg, Stdev, MAD, Median, Quantile float64
}

// BuildPartitionModel trains one feature histogram per spec for every
// record in a single partition's record set, then scores the same
// records to derive the severity thresholds.
func BuildPartitionModel(key flow.PartitionKey, records []flow.Record, specs []FeatureSpec) *PartitionModel {
	m := &PartitionModel{Key: key}
	for _, spec := range specs {
		m.Features = append(m.Features, buildFeature(spec, records))
	}

	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = m.score(r)
	}
	m.Thresholds = DeriveThresholds(scores)
	m.Stats = summarizeScores(scores)
	return m
}

func buildFeature(spec FeatureSpec, records []flow.Record) FeatureHistogram {
	switch spec.Kind {
	case histogram.KindTimeCategory:
		values := make([]int64, len(records))
		for i, r := range records {
			values[i] = r.StartTime
		}
		return FeatureHistogram{Spec: spec, Histogram: histogram.BuildTimeCategoryHistogram(spec.Name, "1=1", values)}

	case histogram.KindNumeric:
		values := make([]int64, len(records))
		for i, r := range records {
			values[i] = numericValue(spec.Name, r)
		}
		return FeatureHistogram{Spec: spec, Histogram: histogram.BuildNumberHistogram(spec.Name, "1=1", values)}

	case histogram.KindNumericCategory:
		values := make([]int64, len(records))
		for i, r := range records {
			values[i] = numericValue(spec.Name, r)
		}
		return FeatureHistogram{
			Spec:      spec,
			Histogram: histogram.BuildNumericCategoryHistogram(spec.Name, "1=1", spec.Modulus, values),
		}

	case histogram.KindStringCategory:
		values := make([]string, len(records))
		for i, r := range records {
			values[i] = stringValue(spec.Name, r)
		}
		return FeatureHistogram{
			Spec:      spec,
			Histogram: histogram.BuildStringCategoryHistogram(spec.Name, "1=1", values, spec.SkipUnknown),
		}

	case histogram.KindIPAddrCategory:
		values := make([]string, len(records))
		for i, r := range records {
			values[i] = stringValue(spec.Name, r)
		}
		return FeatureHistogram{Spec: spec, Histogram: histogram.BuildIPAddrCategoryHistogram(spec.Name, "1=1", values)}

	default:
		panic(fmt.Sprintf("hbos: unknown feature kind %q for %q", spec.Kind, spec.Name))
	}
}

// score computes Sum(log10(1/p_f)) over every trained feature histogram
// for one record, per spec.md section 4.4's HBOS score formula.
func (m *PartitionModel) score(r flow.Record) float64 {
	var total float64
	for _, f := range m.Features {
		p := f.ProbabilityFor(r)
		if p <= 0 {
			p = math.SmallestNonzeroFloat64
		}
		total += math.Log10(1.0 / p)
	}
	return total
}

// Score computes the HBOS score and its derived severity for a record,
// without mutating it.
func (m *PartitionModel) Score(r flow.Record) (score float64, severity flow.Severity, contributions map[string]float32) {
	score = m.score(r)
	severity = m.Thresholds.Classify(score)
	contributions = make(map[string]float32, len(m.Features))
	for _, f := range m.Features {
		contributions[f.Spec.Name] = float32(f.ProbabilityFor(r))
	}
	return score, severity, contributions
}

// Apply scores r in place, populating HBOSScore, HBOSSeverity, and
// HBOSMap.
func (m *PartitionModel) Apply(r *flow.Record) {
	score, severity, contributions := m.Score(*r)
	r.HBOSScore = score
	r.HBOSSeverity = uint8(severity)
	r.HBOSMap = contributions
}

func summarizeScores(scores []float64) Stats {
	if len(scores) == 0 {
		return Stats{}
	}
	min, max := minMax(scores)
	return Stats{
		Min:      min,
		Max:      max,
		Skewness: skewness(scores),
		Avg:      mean(scores),
		Stdev:    stddevPop(scores),
		MAD:      mad(scores),
		Median:   median(scores),
		Quantile: math.Round(quantileCont(scores, 0.99999)),
	}
}

// Serialize persists every feature histogram and the hbos_summary row
// for this partition inside tx.
func (m *PartitionModel) Serialize(tx *sql.Tx) error {
	for _, f := range m.Features {
		if err := f.Histogram.Serialize(tx, m.Key.Observe, m.Key.VLAN, m.Key.Proto); err != nil {
			return fmt.Errorf("serialize feature %q: %w", f.Spec.Name, err)
		}
	}
	_, err := tx.Exec(
		`INSERT OR REPLACE INTO hbos_summary
			(observe, vlan, proto, min, max, skewness, avg, stdev, mad, median, quantile, low, medium, high, severe, filter)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Key.Observe, m.Key.VLAN, m.Key.Proto,
		m.Stats.Min, m.Stats.Max, m.Stats.Skewness, m.Stats.Avg, m.Stats.Stdev, m.Stats.MAD, m.Stats.Median, m.Stats.Quantile,
		m.Thresholds.Low, m.Thresholds.Medium, m.Thresholds.High, m.Thresholds.Severe, "1=1",
	)
	if err != nil {
		return fmt.Errorf("insert hbos_summary for %s/%d/%s: %w", m.Key.Observe, m.Key.VLAN, m.Key.Proto, err)
	}
	return nil
}

// LoadPartitionModel reads a trained partition model back from the
// database, dispatching to each feature's Load function by the kind
// recorded in histogram_summary.
func LoadPartitionModel(db *sql.DB, key flow.PartitionKey, specs []FeatureSpec) (*PartitionModel, error) {
	m := &PartitionModel{Key: key}
	for _, spec := range specs {
		var s histogram.Summary
		err := db.QueryRow(
			`SELECT observe, vlan, proto, name, histogram, count, hash_size, bin_count, filter
			 FROM histogram_summary WHERE observe=? AND vlan=? AND proto=? AND name=?`,
			key.Observe, key.VLAN, key.Proto, spec.Name,
		).Scan(&s.Observe, &s.VLAN, &s.Proto, &s.Name, &s.Kind, &s.Count, &s.HashSize, &s.BinCount, &s.Filter)
		if err != nil {
			return nil, fmt.Errorf("load histogram summary for %q: %w", spec.Name, err)
		}

		var h histogram.Histogram
		switch s.Kind {
		case histogram.KindTimeCategory:
			h, err = histogram.LoadTimeCategoryHistogramFromDB(db, s)
		case histogram.KindNumeric:
			h, err = histogram.LoadNumberHistogramFromDB(db, s)
		case histogram.KindNumericCategory:
			h, err = histogram.LoadNumericCategoryHistogramFromDB(db, s)
		case histogram.KindStringCategory:
			h, err = histogram.LoadStringCategoryHistogramFromDB(db, s)
		case histogram.KindIPAddrCategory:
			h, err = histogram.LoadIPAddrCategoryHistogramFromDB(db, s)
		default:
			err = fmt.Errorf("unknown histogram kind %q", s.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("load feature %q: %w", spec.Name, err)
		}
		m.Features = append(m.Features, FeatureHistogram{Spec: spec, Histogram: h})
	}

	err := db.QueryRow(
		`SELECT min, max, skewness, avg, stdev, mad, median, quantile, low, medium, high, severe
		 FROM hbos_summary WHERE observe=? AND vlan=? AND proto=?`,
		key.Observe, key.VLAN, key.Proto,
	).Scan(
		&m.Stats.Min, &m.Stats.Max, &m.Stats.Skewness, &m.Stats.Avg, &m.Stats.Stdev, &m.Stats.MAD, &m.Stats.Median, &m.Stats.Quantile,
		&m.Thresholds.Low, &m.Thresholds.Medium, &m.Thresholds.High, &m.Thresholds.Severe,
	)
	if err != nil {
		return nil, fmt.Errorf("load hbos_summary for %s/%d/%s: %w", key.Observe, key.VLAN, key.Proto, err)
	}
	return m, nil
}

// GenerateTriggerData expands a record's nDPI risk bitmask into its
// named risk list and aggregate risk score, and classifies risk severity
// using the same four-threshold shape as HBOS severity but scaled to the
// count of set bits against the 57-entry risk table.
func GenerateTriggerData(r *flow.Record) {
	r.NDPIRiskList = RiskNames(r.NDPIRiskBits)
	r.NDPIRiskScore = uint32(len(r.NDPIRiskList))

	switch {
	case r.NDPIRiskScore == 0:
		r.NDPIRiskSeverity = uint8(flow.SeverityNone)
	case r.NDPIRiskScore <= 2:
		r.NDPIRiskSeverity = uint8(flow.SeverityLow)
	case r.NDPIRiskScore <= 4:
		r.NDPIRiskSeverity = uint8(flow.SeverityMedium)
	case r.NDPIRiskScore <= 6:
		r.NDPIRiskSeverity = uint8(flow.SeverityHigh)
	default:
		r.NDPIRiskSeverity = uint8(flow.SeveritySevere)
	}
}
