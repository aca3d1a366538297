/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package histogram implements the five typed feature histograms shared by
// the HBOS model: numeric-binned, numeric-category, string-category,
// ip-address-category, and time-category. All five share the operations
// build/serialize/load/probability (spec.md §4.3); this package expresses
// that polymorphism as a Go interface over tagged concrete types rather
// than inheritance, per Design Note "Polymorphism over histograms".
//
// Grounded on original_source/gnat/src/model/histogram/*.rs.
package histogram

import (
	"database/sql"
	"fmt"
)

// Kind tags which concrete histogram implementation a row belongs to.
type Kind string

const (
	KindNumeric         Kind = "numeric"
	KindNumericCategory Kind = "numeric_category"
	KindStringCategory  Kind = "string_category"
	KindIPAddrCategory  Kind = "ipaddr_category"
	KindTimeCategory    Kind = "time_category"
)

// Well-known modulus defaults, per spec.md §3's histogram family table.
const (
	NoModulus             = 0
	DefaultPortModulus    = 8192
	DefaultASNModulus     = 8192
	DefaultVLANModulus    = 1024
	DefaultNetworkModulus = 8192
	DefaultEntropyModulus = 256
	DefaultPCRModulus     = 256
	IPAddrHashSpace       = 65536
)

// Histogram is the shared contract every feature histogram implements.
type Histogram interface {
	Name() string
	Kind() Kind
	Count() int64
	BinCount() int64
	HashSize() int64
	Filter() string
	// Serialize persists the summary row and the kind-specific detail
	// rows for this histogram under (observe, vlan, proto, name).
	Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error
}

// Summary is one row of histogram_summary, the dispatch key used by Load
// to decide which detail table(s) to read for a given partition/feature.
type Summary struct {
	Observe  string
	VLAN     uint16
	Proto    string
	Name     string
	Kind     Kind
	Count    int64
	HashSize int64
	BinCount int64
	Filter   string
}

// DDL holds the CREATE TABLE statements for the model database, grounded
// on original_source/gnat/src/model/histogram.rs's SQL constants and
// spec.md §6 "Model database schema".
const DDL = `
CREATE TABLE IF NOT EXISTS histogram_summary (
	observe   TEXT NOT NULL,
	vlan      INTEGER NOT NULL,
	proto     TEXT NOT NULL,
	name      TEXT NOT NULL,
	histogram TEXT NOT NULL,
	count     INTEGER NOT NULL,
	hash_size INTEGER NOT NULL,
	bin_count INTEGER NOT NULL,
	filter    TEXT NOT NULL,
	PRIMARY KEY (observe, vlan, proto, name)
);
CREATE TABLE IF NOT EXISTS histogram_numerical (
	observe     TEXT NOT NULL,
	vlan        INTEGER NOT NULL,
	proto       TEXT NOT NULL,
	name        TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	key         INTEGER NOT NULL,
	value       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS histogram_numeric_category (
	observe TEXT NOT NULL,
	vlan    INTEGER NOT NULL,
	proto   TEXT NOT NULL,
	name    TEXT NOT NULL,
	key     INTEGER NOT NULL,
	value   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS histogram_string_category (
	observe TEXT NOT NULL,
	vlan    INTEGER NOT NULL,
	proto   TEXT NOT NULL,
	name    TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS histogram_ipaddr_category (
	observe TEXT NOT NULL,
	vlan    INTEGER NOT NULL,
	proto   TEXT NOT NULL,
	name    TEXT NOT NULL,
	key     INTEGER NOT NULL,
	value   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS histogram_time_category (
	observe TEXT NOT NULL,
	vlan    INTEGER NOT NULL,
	proto   TEXT NOT NULL,
	name    TEXT NOT NULL,
	key     INTEGER NOT NULL,
	value   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS hbos_summary (
	observe  TEXT NOT NULL,
	vlan     INTEGER NOT NULL,
	proto    TEXT NOT NULL,
	min      REAL NOT NULL,
	max      REAL NOT NULL,
	skewness REAL NOT NULL,
	avg      REAL NOT NULL,
	stdev    REAL NOT NULL,
	mad      REAL NOT NULL,
	median   REAL NOT NULL,
	quantile REAL NOT NULL,
	low      REAL NOT NULL,
	medium   REAL NOT NULL,
	high     REAL NOT NULL,
	severe   REAL NOT NULL,
	filter   TEXT NOT NULL,
	PRIMARY KEY (observe, vlan, proto)
);
`

// laplace applies the shared Laplace-smoothed probability rule:
// (freq+1)/(count+1) for seen keys, 1/(count+1) for unseen.
func laplace(freq, count int64) float64 {
	return float64(freq+1) / float64(count+1)
}

func unseen(count int64) float64 {
	return 1.0 / float64(count+1)
}

func insertSummary(tx *sql.Tx, s Summary) error {
	_, err := tx.Exec(
		`INSERT OR REPLACE INTO histogram_summary
			(observe, vlan, proto, name, histogram, count, hash_size, bin_count, filter)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Observe, s.VLAN, s.Proto, s.Name, string(s.Kind), s.Count, s.HashSize, s.BinCount, s.Filter,
	)
	if err != nil {
		return fmt.Errorf("insert histogram_summary for %s/%d/%s/%s: %w", s.Observe, s.VLAN, s.Proto, s.Name, err)
	}
	return nil
}
