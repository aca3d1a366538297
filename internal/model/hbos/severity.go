/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package hbos

import "github.com/fidelis-farm/gnat-toolkit/internal/flow"

// Thresholds holds the four score boundaries that separate severity bands.
type Thresholds struct {
	Low, Medium, High, Severe float64
}

// DeriveThresholds buckets the training score column into a 10-bin
// equal-width histogram over [min(scores), max(scores)] and takes the
// four bin edges immediately preceding the maximum as the low/medium/
// high/severe boundaries. Grounded on the "shifting one slot per
// iteration" threshold derivation described for HBOS train in
// original_source/gnat/src/model/histogram/histogram_model.rs.
func DeriveThresholds(scores []float64) Thresholds {
	if len(scores) == 0 {
		return Thresholds{}
	}
	min, max := minMax(scores)
	if min == max {
		return Thresholds{Low: min, Medium: min, High: min, Severe: min}
	}

	const bins = 10
	edges := make([]float64, bins+1)
	width := (max - min) / float64(bins)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[bins] = max

	return Thresholds{
		Low:    edges[bins-4],
		Medium: edges[bins-3],
		High:   edges[bins-2],
		Severe: edges[bins-1],
	}
}

// Classify maps a score to a severity band using the four thresholds.
// Scores strictly above Severe classify as SeveritySevere; the gap at
// Severity value 1 and the unused Critical/Emergency bands are never
// assigned by this function.
func (t Thresholds) Classify(score float64) flow.Severity {
	switch {
	case score > t.Severe:
		return flow.SeveritySevere
	case score > t.High:
		return flow.SeverityHigh
	case score > t.Medium:
		return flow.SeverityMedium
	case score > t.Low:
		return flow.SeverityLow
	default:
		return flow.SeverityNone
	}
}
