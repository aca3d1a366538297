/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package table implements the per-minute metric roll-up tables that back
// the aggregate stage. Each table groups a batch of flow records by a
// one-minute time bucket and an observation point, the way
// original_source/gnat/src/model/table/*.rs groups rows out of an
// in-memory analytical database and appends the result to a metrics sink.
//
// The original runs these queries against DuckDB. No DuckDB driver exists
// in this module's dependency pack, so the scratch relation that the
// per-table SQL runs against is a sqlite3 in-memory table instead (the
// same engine internal/rule already uses for its literal-SQL trigger
// path); the query shapes and grouping semantics are unchanged.
package table

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// MetricRecord is one roll-up observation: a named metric, keyed by an
// arbitrary dimension value, for one observation point in one minute.
type MetricRecord struct {
	Stream  uint32
	Bucket  time.Time
	Observe string
	Name    string
	Key     string
	Value   float64
}

// Sink receives the metric rows a Table produces. The aggregate stage
// supplies a Parquet-backed implementation; tests use SliceSink.
type Sink interface {
	Append(MetricRecord) error
}

// SliceSink collects MetricRecords in memory, for tests and for callers
// that want to batch rows before handing them to a writer.
type SliceSink struct {
	Records []MetricRecord
}

func (s *SliceSink) Append(r MetricRecord) error {
	s.Records = append(s.Records, r)
	return nil
}

// Table is the roll-up contract every metric table satisfies: a stable
// name and an Insert that queries the scratch database and appends its
// rows to sink. Mirrors original_source's TableTrait, minus purge (no
// retention/partition-drop API exists against the sqlite scratch engine;
// the aggregate stage's output files carry their own retention via the
// pipeline's normal pass/delete lifecycle instead).
type Table interface {
	Name() string
	Insert(db *sql.DB, sink Sink) error
}

// All is every roll-up table the aggregate stage runs over a batch, in a
// fixed order. Bytes, SSH, Country, VPN, DoH, and QUIC are grounded
// directly on retrieved model/table/*.rs files; AppID, ASN, DNS, Flow, IP,
// Packets, Proto, and VLAN are named by table.rs's module declaration list
// but their .rs bodies were not retrieved into this pack, so each is built
// from the shared TableTrait/MetricRecord query shape applied to the flow
// field its name denotes.
var All = []Table{
	BytesTable{},
	PacketsTable{},
	ProtoTable{},
	CountryTable{},
	AppIDTable{},
	ASNTable{},
	VLANTable{},
	IPTable{},
	DNSTable{},
	DoHTable{},
	QUICTable{},
	SSHTable{},
	VPNTable{},
	FlowTable{},
}

// FlowTableDDL creates the scratch relation every roll-up query runs
// against. Only the columns a table groups or filters by are carried.
const FlowTableDDL = `
CREATE TABLE flow_metrics (
	bucket        INTEGER NOT NULL,
	observe       TEXT NOT NULL,
	proto         TEXT NOT NULL,
	saddr         TEXT NOT NULL,
	daddr         TEXT NOT NULL,
	sport         INTEGER NOT NULL,
	dport         INTEGER NOT NULL,
	dvlan         INTEGER NOT NULL,
	sasn          INTEGER NOT NULL,
	dasn          INTEGER NOT NULL,
	scountry      TEXT NOT NULL,
	dcountry      TEXT NOT NULL,
	sbytes        INTEGER NOT NULL,
	dbytes        INTEGER NOT NULL,
	spkts         INTEGER NOT NULL,
	dpkts         INTEGER NOT NULL,
	ndpi_appid    TEXT NOT NULL,
	ndpi_category TEXT NOT NULL
);
`

// bucketWidthMicros is one minute expressed in the same microsecond units
// as flow.Record.StartTime, matching original_source's
// "time_bucket(INTERVAL '1' minute, stime)".
const bucketWidthMicros = 60_000_000

// LoadBatch populates the scratch table from a batch of scored records.
func LoadBatch(db *sql.DB, records []flow.Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin metrics load: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO flow_metrics (
			bucket, observe, proto, saddr, daddr, sport, dport, dvlan,
			sasn, dasn, scountry, dcountry, sbytes, dbytes, spkts, dpkts,
			ndpi_appid, ndpi_category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare metrics insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		bucket := (r.StartTime / bucketWidthMicros) * bucketWidthMicros
		if _, err := stmt.Exec(
			bucket, r.Observe, r.Proto, r.SrcAddr, r.DstAddr, r.SrcPort, r.DstPort, r.DstVLAN,
			r.SrcASN, r.DstASN, r.SrcCountry, r.DstCountry, r.SrcBytes, r.DstBytes, r.SrcPackets, r.DstPackets,
			r.NDPIAppID, r.NDPICategory,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert metrics row: %w", err)
		}
	}
	return tx.Commit()
}

// RunAll loads records into a fresh in-memory scratch database and runs
// every table over it, per spec.md §4.6's aggregate stage: build an
// in-memory relation from the batch, run each roll-up query, write the
// results. Logs a "[name:count]" line per table that produced rows, the
// way the original's per-query println! does.
func RunAll(records []flow.Record, sink Sink) error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("open metrics scratch db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(FlowTableDDL); err != nil {
		return fmt.Errorf("create metrics scratch table: %w", err)
	}
	if err := LoadBatch(db, records); err != nil {
		return err
	}

	for _, t := range All {
		counting := &SliceSink{}
		if err := t.Insert(db, counting); err != nil {
			return fmt.Errorf("table %s: %w", t.Name(), err)
		}
		if len(counting.Records) > 0 {
			log.Infof("\t[%s:%d]", t.Name(), len(counting.Records))
		}
		for _, rec := range counting.Records {
			if err := sink.Append(rec); err != nil {
				return fmt.Errorf("table %s: write: %w", t.Name(), err)
			}
		}
	}
	return nil
}

// queryBucketedCounts runs a "bucket, observe, <col>, count()" style
// aggregate grouped over flow_metrics and appends one MetricRecord per row,
// the shared shape behind ssh.rs, vpn.rs, doh.rs and quic.rs.
func queryBucketedCounts(db *sql.DB, sink Sink, query, metricName string) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("query %s: %w", metricName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket int64
		var observe, key string
		var count int64
		if err := rows.Scan(&bucket, &observe, &key, &count); err != nil {
			return fmt.Errorf("scan %s row: %w", metricName, err)
		}
		if err := sink.Append(MetricRecord{
			Bucket:  time.UnixMicro(bucket).UTC(),
			Observe: observe,
			Name:    metricName,
			Key:     key,
			Value:   float64(count),
		}); err != nil {
			return err
		}
	}
	return rows.Err()
}

// queryBucketedSum runs a "bucket, observe, sum(<col>)" aggregate and
// appends one MetricRecord per row under a fixed key, the shape behind
// bytes.rs and packets.rs.
func queryBucketedSum(db *sql.DB, sink Sink, query, metricName, key string) error {
	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("query %s: %w", metricName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket int64
		var observe string
		var sum float64
		if err := rows.Scan(&bucket, &observe, &sum); err != nil {
			return fmt.Errorf("scan %s row: %w", metricName, err)
		}
		if err := sink.Append(MetricRecord{
			Bucket:  time.UnixMicro(bucket).UTC(),
			Observe: observe,
			Name:    metricName,
			Key:     key,
			Value:   sum,
		}); err != nil {
			return err
		}
	}
	return rows.Err()
}
