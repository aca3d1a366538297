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

// StringCategoryHistogram hashmap-counts string values. The appid feature
// skips the literal "unknown" value during training, matching
// original_source/gnat/src/model/histogram/string_category.rs.
type StringCategoryHistogram struct {
	name   string
	filter string
	count  int64
	freq   map[string]int64
}

// BuildStringCategoryHistogram trains from raw values. skipUnknown should
// be true only for the "ndpi_appid" feature.
func BuildStringCategoryHistogram(name, filter string, values []string, skipUnknown bool) *StringCategoryHistogram {
	h := &StringCategoryHistogram{name: name, filter: filter, freq: make(map[string]int64)}
	for _, v := range values {
		if skipUnknown && v == "unknown" {
			continue
		}
		h.freq[v]++
		h.count++
	}
	return h
}

func (h *StringCategoryHistogram) Name() string    { return h.name }
func (h *StringCategoryHistogram) Kind() Kind      { return KindStringCategory }
func (h *StringCategoryHistogram) Count() int64    { return h.count }
func (h *StringCategoryHistogram) BinCount() int64 { return int64(len(h.freq)) }
func (h *StringCategoryHistogram) HashSize() int64 { return NoModulus }
func (h *StringCategoryHistogram) Filter() string  { return h.filter }

func (h *StringCategoryHistogram) Probability(v string) float64 {
	freq, ok := h.freq[v]
	if !ok {
		return unseen(h.count)
	}
	return laplace(freq, h.count)
}

func (h *StringCategoryHistogram) Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error {
	if err := insertSummary(tx, Summary{
		Observe: observe, VLAN: vlan, Proto: proto, Name: h.name, Kind: KindStringCategory,
		Count: h.count, HashSize: NoModulus, BinCount: h.BinCount(), Filter: h.filter,
	}); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM histogram_string_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		observe, vlan, proto, h.name,
	); err != nil {
		return fmt.Errorf("clear histogram_string_category: %w", err)
	}
	for key, value := range h.freq {
		if _, err := tx.Exec(
			`INSERT INTO histogram_string_category (observe, vlan, proto, name, key, value)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			observe, vlan, proto, h.name, key, value,
		); err != nil {
			return fmt.Errorf("insert histogram_string_category row: %w", err)
		}
	}
	return nil
}

// LoadStringCategoryHistogramFromDB reads back a trained histogram.
func LoadStringCategoryHistogramFromDB(db *sql.DB, s Summary) (*StringCategoryHistogram, error) {
	rows, err := db.Query(
		`SELECT key, value FROM histogram_string_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		s.Observe, s.VLAN, s.Proto, s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("query histogram_string_category: %w", err)
	}
	defer rows.Close()

	h := &StringCategoryHistogram{name: s.Name, filter: s.Filter, count: s.Count, freq: make(map[string]int64)}
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan histogram_string_category row: %w", err)
		}
		h.freq[key] = value
	}
	return h, rows.Err()
}
