/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package histogram

import (
	"database/sql"
	"fmt"
)

// NumericCategoryHistogram hashmap-counts integer values, optionally
// modulus-reducing the key space first (ports/ASN/VLAN get a modulus;
// entropy/PCR do not). Grounded on
// original_source/gnat/src/model/histogram/numeric_category.rs.
type NumericCategoryHistogram struct {
	name     string
	filter   string
	hashSize int64
	count    int64
	freq     map[int64]int64
}

// BuildNumericCategoryHistogram trains from raw values, applying modulus
// (0 means "no modulus") before counting.
func BuildNumericCategoryHistogram(name, filter string, modulus int64, values []int64) *NumericCategoryHistogram {
	h := &NumericCategoryHistogram{name: name, filter: filter, hashSize: modulus, freq: make(map[int64]int64)}
	for _, v := range values {
		h.freq[h.key(v)]++
		h.count++
	}
	return h
}

func (h *NumericCategoryHistogram) key(v int64) int64 {
	if h.hashSize <= NoModulus {
		return v
	}
	mod := v % h.hashSize
	if mod < 0 {
		mod += h.hashSize
	}
	return mod
}

func (h *NumericCategoryHistogram) Name() string    { return h.name }
func (h *NumericCategoryHistogram) Kind() Kind      { return KindNumericCategory }
func (h *NumericCategoryHistogram) Count() int64    { return h.count }
func (h *NumericCategoryHistogram) BinCount() int64 { return int64(len(h.freq)) }
func (h *NumericCategoryHistogram) HashSize() int64 { return h.hashSize }
func (h *NumericCategoryHistogram) Filter() string  { return h.filter }

func (h *NumericCategoryHistogram) Probability(v int64) float64 {
	freq, ok := h.freq[h.key(v)]
	if !ok {
		return unseen(h.count)
	}
	return laplace(freq, h.count)
}

func (h *NumericCategoryHistogram) Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error {
	if err := insertSummary(tx, Summary{
		Observe: observe, VLAN: vlan, Proto: proto, Name: h.name, Kind: KindNumericCategory,
		Count: h.count, HashSize: h.hashSize, BinCount: h.BinCount(), Filter: h.filter,
	}); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM histogram_numeric_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		observe, vlan, proto, h.name,
	); err != nil {
		return fmt.Errorf("clear histogram_numeric_category: %w", err)
	}
	for key, value := range h.freq {
		if _, err := tx.Exec(
			`INSERT INTO histogram_numeric_category (observe, vlan, proto, name, key, value)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			observe, vlan, proto, h.name, key, value,
		); err != nil {
			return fmt.Errorf("insert histogram_numeric_category row: %w", err)
		}
	}
	return nil
}

// LoadNumericCategoryHistogramFromDB reads back a trained histogram.
func LoadNumericCategoryHistogramFromDB(db *sql.DB, s Summary) (*NumericCategoryHistogram, error) {
	rows, err := db.Query(
		`SELECT key, value FROM histogram_numeric_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		s.Observe, s.VLAN, s.Proto, s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("query histogram_numeric_category: %w", err)
	}
	defer rows.Close()

	h := &NumericCategoryHistogram{name: s.Name, filter: s.Filter, hashSize: s.HashSize, count: s.Count, freq: make(map[int64]int64)}
	for rows.Next() {
		var key, value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan histogram_numeric_category row: %w", err)
		}
		h.freq[key] = value
	}
	return h, rows.Err()
}
