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
	"time"
)

// TimeCategoryHistogram hashmap-counts the UTC hour-of-day (0-23) derived
// from a microsecond epoch timestamp. Grounded on
// original_source/gnat/src/model/histogram/time_category.rs.
type TimeCategoryHistogram struct {
	name   string
	filter string
	count  int64
	freq   map[int64]int64
}

// BuildTimeCategoryHistogram trains from raw microsecond timestamps.
func BuildTimeCategoryHistogram(name, filter string, timestampsMicros []int64) *TimeCategoryHistogram {
	h := &TimeCategoryHistogram{name: name, filter: filter, freq: make(map[int64]int64)}
	for _, ts := range timestampsMicros {
		h.freq[HourOfDay(ts)]++
		h.count++
	}
	return h
}

// HourOfDay extracts the UTC hour (0-23) from a microsecond epoch
// timestamp.
func HourOfDay(microseconds int64) int64 {
	t := time.UnixMicro(microseconds).UTC()
	return int64(t.Hour())
}

func (h *TimeCategoryHistogram) Name() string    { return h.name }
func (h *TimeCategoryHistogram) Kind() Kind      { return KindTimeCategory }
func (h *TimeCategoryHistogram) Count() int64    { return h.count }
func (h *TimeCategoryHistogram) BinCount() int64 { return int64(len(h.freq)) }
func (h *TimeCategoryHistogram) HashSize() int64 { return NoModulus }
func (h *TimeCategoryHistogram) Filter() string  { return h.filter }

func (h *TimeCategoryHistogram) Probability(microseconds int64) float64 {
	freq, ok := h.freq[HourOfDay(microseconds)]
	if !ok {
		return unseen(h.count)
	}
	return laplace(freq, h.count)
}

func (h *TimeCategoryHistogram) Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error {
	if err := insertSummary(tx, Summary{
		Observe: observe, VLAN: vlan, Proto: proto, Name: h.name, Kind: KindTimeCategory,
		Count: h.count, HashSize: NoModulus, BinCount: h.BinCount(), Filter: h.filter,
	}); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`DELETE FROM histogram_time_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		observe, vlan, proto, h.name,
	); err != nil {
		return fmt.Errorf("clear histogram_time_category: %w", err)
	}
	for key, value := range h.freq {
		if _, err := tx.Exec(
			`INSERT INTO histogram_time_category (observe, vlan, proto, name, key, value)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			observe, vlan, proto, h.name, key, value,
		); err != nil {
			return fmt.Errorf("insert histogram_time_category row: %w", err)
		}
	}
	return nil
}

// LoadTimeCategoryHistogramFromDB reads back a trained histogram.
func LoadTimeCategoryHistogramFromDB(db *sql.DB, s Summary) (*TimeCategoryHistogram, error) {
	rows, err := db.Query(
		`SELECT key, value FROM histogram_time_category WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		s.Observe, s.VLAN, s.Proto, s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("query histogram_time_category: %w", err)
	}
	defer rows.Close()

	h := &TimeCategoryHistogram{name: s.Name, filter: s.Filter, count: s.Count, freq: make(map[int64]int64)}
	for rows.Next() {
		var key, value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan histogram_time_category row: %w", err)
		}
		h.freq[key] = value
	}
	return h, rows.Err()
}
