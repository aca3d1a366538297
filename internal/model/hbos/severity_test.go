/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package hbos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

func TestDeriveThresholdsMonotone(t *testing.T) {
	scores := make([]float64, 100)
	for i := range scores {
		scores[i] = float64(i)
	}
	th := DeriveThresholds(scores)

	assert.LessOrEqual(t, th.Low, th.Medium)
	assert.LessOrEqual(t, th.Medium, th.High)
	assert.LessOrEqual(t, th.High, th.Severe)
	assert.InDelta(t, 89.1, th.Severe, 1e-9)
}

func TestClassifyBands(t *testing.T) {
	th := Thresholds{Low: 10, Medium: 20, High: 30, Severe: 40}

	assert.Equal(t, flow.SeverityNone, th.Classify(5))
	assert.Equal(t, flow.SeverityLow, th.Classify(15))
	assert.Equal(t, flow.SeverityMedium, th.Classify(25))
	assert.Equal(t, flow.SeverityHigh, th.Classify(35))
	assert.Equal(t, flow.SeveritySevere, th.Classify(50))
}

func TestDeriveThresholdsConstantScores(t *testing.T) {
	scores := []float64{3, 3, 3, 3}
	th := DeriveThresholds(scores)
	assert.Equal(t, Thresholds{Low: 3, Medium: 3, High: 3, Severe: 3}, th)
}
