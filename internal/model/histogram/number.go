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

	"github.com/fidelis-farm/gnat-toolkit/internal/model/binning"
)

// DefaultBinCount is the equal-frequency bin count used when training a
// numeric-binned histogram (spec.md §3: "N=100 bins over training data").
const DefaultBinCount = 100

// NumberHistogram is the numeric-binned feature histogram: an
// equal-frequency binner over the training sample, queried at score time
// by bin membership.
type NumberHistogram struct {
	name   string
	filter string
	count  int64
	ef     *binning.EqualFrequency
}

// BuildNumberHistogram trains a numeric-binned histogram from values
// pulled via "SELECT <feature> FROM flow WHERE <filter>".
func BuildNumberHistogram(name, filter string, values []int64) *NumberHistogram {
	return &NumberHistogram{
		name:   name,
		filter: filter,
		count:  int64(len(values)),
		ef:     binning.NewEqualFrequency(values, DefaultBinCount),
	}
}

// LoadNumberHistogram reconstructs a trained histogram from persisted
// boundaries and frequencies. Per SPEC_FULL.md's resolution of Open
// Question #1, both are always persisted and rehydrated together.
func LoadNumberHistogram(name, filter string, count int64, boundaries, frequency []int64) *NumberHistogram {
	return &NumberHistogram{
		name:   name,
		filter: filter,
		count:  count,
		ef:     binning.LoadEqualFrequency(boundaries, frequency),
	}
}

func (h *NumberHistogram) Name() string   { return h.name }
func (h *NumberHistogram) Kind() Kind     { return KindNumeric }
func (h *NumberHistogram) Count() int64   { return h.count }
func (h *NumberHistogram) BinCount() int64 { return int64(h.ef.BinCount()) }
func (h *NumberHistogram) HashSize() int64 { return NoModulus }
func (h *NumberHistogram) Filter() string  { return h.filter }

// Probability returns the Laplace-smoothed probability of v falling into
// its equal-frequency bin.
func (h *NumberHistogram) Probability(v int64) float64 {
	bin := h.ef.Bin(v)
	freq := h.ef.Frequency()
	if bin < 0 || bin >= len(freq) {
		return unseen(h.count)
	}
	return laplace(freq[bin], h.count)
}

func (h *NumberHistogram) Serialize(tx *sql.Tx, observe string, vlan uint16, proto string) error {
	if err := insertSummary(tx, Summary{
		Observe: observe, VLAN: vlan, Proto: proto, Name: h.name, Kind: KindNumeric,
		Count: h.count, HashSize: NoModulus, BinCount: h.BinCount(), Filter: h.filter,
	}); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`DELETE FROM histogram_numerical WHERE observe=? AND vlan=? AND proto=? AND name=?`,
		observe, vlan, proto, h.name,
	); err != nil {
		return fmt.Errorf("clear histogram_numerical: %w", err)
	}

	boundaries := h.ef.Boundaries()
	frequency := h.ef.Frequency()
	for i, boundary := range boundaries {
		var freq int64
		if i < len(frequency) {
			freq = frequency[i]
		}
		if _, err := tx.Exec(
			`INSERT INTO histogram_numerical (observe, vlan, proto, name, seq, key, value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			observe, vlan, proto, h.name, i, boundary, freq,
		); err != nil {
			return fmt.Errorf("insert histogram_numerical row %d: %w", i, err)
		}
	}
	return nil
}

// LoadNumberHistogramFromDB reads back the boundary/frequency rows written
// by Serialize, in ascending seq order.
func LoadNumberHistogramFromDB(db *sql.DB, s Summary) (*NumberHistogram, error) {
	rows, err := db.Query(
		`SELECT key, value FROM histogram_numerical
		 WHERE observe=? AND vlan=? AND proto=? AND name=? ORDER BY seq ASC`,
		s.Observe, s.VLAN, s.Proto, s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("query histogram_numerical: %w", err)
	}
	defer rows.Close()

	var boundaries, frequency []int64
	for rows.Next() {
		var key, value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan histogram_numerical row: %w", err)
		}
		boundaries = append(boundaries, key)
		frequency = append(frequency, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return LoadNumberHistogram(s.Name, s.Filter, s.Count, boundaries, frequency), nil
}
