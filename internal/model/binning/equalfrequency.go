/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package binning implements the equal-frequency integer binner used by
// the numeric-binned feature histogram.
package binning

import "sort"

// EqualFrequency partitions a sorted copy of a sample into N roughly
// equal-sized bins and can then report, for any boundary set it produced,
// which bin a value falls into. Grounded on
// original_source/gnat/src/model/binning/equal_frequency.rs.
type EqualFrequency struct {
	boundaries []int64
	frequency  []int64
}

// NewEqualFrequency computes boundaries for values split into n bins.
// Boundaries are strictly increasing; the first equals min(values), the
// last equals max(values)+1. If fewer than two boundaries survive
// deduplication, it falls back to [min, max+1].
func NewEqualFrequency(values []int64, n int) *EqualFrequency {
	ef := &EqualFrequency{}
	ef.boundaries = calculateBoundaries(values, n)
	ef.frequency = make([]int64, binCount(ef.boundaries))
	for _, v := range values {
		bin := ef.Bin(v)
		ef.frequency[bin]++
	}
	return ef
}

// Boundaries returns the computed boundary vector.
func (ef *EqualFrequency) Boundaries() []int64 { return ef.boundaries }

// Frequency returns the per-bin counts aligned with Bin's numbering.
func (ef *EqualFrequency) Frequency() []int64 { return ef.frequency }

// BinCount returns the number of bins implied by the boundary vector.
func (ef *EqualFrequency) BinCount() int { return binCount(ef.boundaries) }

// Bin returns the bin index v falls into under the half-open convention:
// values below boundary[0] go to bin 0, at-or-above boundary[len-1] go to
// the last bin, and an exact match on boundary[i] belongs to bin i.
func (ef *EqualFrequency) Bin(v int64) int {
	return bin(ef.boundaries, v)
}

// LoadEqualFrequency rebuilds an EqualFrequency from persisted boundaries
// and per-bin frequencies (the model database round trip). This is the Go
// port's fix for the original's serialize bug: persist both, not just
// boundaries (see SPEC_FULL.md §9, Open Question #1).
func LoadEqualFrequency(boundaries, frequency []int64) *EqualFrequency {
	return &EqualFrequency{boundaries: boundaries, frequency: frequency}
}

func binCount(boundaries []int64) int {
	if len(boundaries) < 2 {
		return 1
	}
	return len(boundaries) - 1
}

func bin(boundaries []int64, v int64) int {
	if len(boundaries) < 2 {
		return 0
	}
	if v < boundaries[0] {
		return 0
	}
	last := len(boundaries) - 1
	if v >= boundaries[last] {
		return last - 1
	}
	// binary search for the rightmost boundary <= v
	lo, hi := 0, last
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if boundaries[mid] <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func calculateBoundaries(values []int64, n int) []int64 {
	if len(values) == 0 || n < 1 {
		return nil
	}

	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	count := len(sorted)
	min := sorted[0]
	max := sorted[count-1]

	raw := make([]int64, 0, n+1)
	raw = append(raw, min)

	for i := 1; i < n; i++ {
		idealIdx := float64(i) * (float64(count) / float64(n))
		idx := int(idealIdx + 0.5)
		if idx >= count {
			idx = count - 1
		}
		if idx < 0 {
			idx = 0
		}

		candidate := sorted[idx]

		// Find the run of duplicates spanning this candidate index.
		runStart := idx
		for runStart > 0 && sorted[runStart-1] == candidate {
			runStart--
		}
		runEnd := idx
		for runEnd < count-1 && sorted[runEnd+1] == candidate {
			runEnd++
		}

		if runStart == runEnd {
			raw = append(raw, candidate)
			continue
		}

		// Duplicate run spans the candidate cut: decide whether the run
		// belongs to the lower or upper bin by comparing its midpoint to
		// the ideal index.
		midpoint := float64(runStart+runEnd) / 2.0
		if midpoint < idealIdx {
			// Push the boundary past the run, to the upper bin.
			if runEnd+1 < count {
				raw = append(raw, sorted[runEnd+1])
			} else {
				raw = append(raw, candidate)
			}
		} else {
			raw = append(raw, candidate)
		}
	}

	raw = append(raw, max+1)

	// Deduplicate, preserving strict monotonicity.
	boundaries := make([]int64, 0, len(raw))
	for _, b := range raw {
		if len(boundaries) == 0 || b > boundaries[len(boundaries)-1] {
			boundaries = append(boundaries, b)
		}
	}

	if len(boundaries) < 2 {
		return []int64{min, max + 1}
	}
	return boundaries
}
