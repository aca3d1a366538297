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
)

func TestMedianOddEven(t *testing.T) {
	assert.InDelta(t, 3.0, median([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.InDelta(t, 2.5, median([]float64{1, 2, 3, 4}), 1e-9)
}

func TestMADConstantInput(t *testing.T) {
	assert.InDelta(t, 0.0, mad([]float64{5, 5, 5, 5}), 1e-9)
}

func TestQuantileContMatchesMedianAtHalf(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDelta(t, quantileCont(values, 0.5), median(values), 1e-9)
}

func TestQuantileContBounds(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	assert.InDelta(t, 10.0, quantileCont(values, 0.0), 1e-9)
	assert.InDelta(t, 40.0, quantileCont(values, 1.0), 1e-9)
}

func TestSkewnessZeroForSymmetric(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 0.0, skewness(values), 1e-9)
}

func TestStddevPopZeroForConstant(t *testing.T) {
	assert.InDelta(t, 0.0, stddevPop([]float64{7, 7, 7, 7}), 1e-9)
}
