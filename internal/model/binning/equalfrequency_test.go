/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package binning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualFrequencyBoundariesAreMonotone(t *testing.T) {
	values := []int64{1, 2, 3, 8, 9, 10, 15, 16, 17, 18}
	ef := NewEqualFrequency(values, 3)

	boundaries := ef.Boundaries()
	require.LessOrEqual(t, len(boundaries), 4)
	for i := 1; i < len(boundaries); i++ {
		assert.Greater(t, boundaries[i], boundaries[i-1])
	}

	var total int64
	for _, f := range ef.Frequency() {
		total += f
	}
	assert.EqualValues(t, len(values), total)

	for _, f := range ef.Frequency() {
		assert.True(t, f == 3 || f == 4, "expected floor/ceil(10/3) sized bin, got %d", f)
	}
}

func TestEqualFrequencyConstantInput(t *testing.T) {
	ef := NewEqualFrequency([]int64{5, 5, 5, 5, 5}, 3)

	assert.Equal(t, []int64{5, 6}, ef.Boundaries())
	require.Len(t, ef.Frequency(), 1)
	assert.EqualValues(t, 5, ef.Frequency()[0])
}

func TestEqualFrequencyBinAssignment(t *testing.T) {
	ef := LoadEqualFrequency([]int64{0, 10, 20, 31}, []int64{5, 5, 5})

	assert.Equal(t, 0, ef.Bin(-100))
	assert.Equal(t, 0, ef.Bin(0))
	assert.Equal(t, 0, ef.Bin(9))
	assert.Equal(t, 1, ef.Bin(10))
	assert.Equal(t, 2, ef.Bin(30))
	assert.Equal(t, 2, ef.Bin(1000))
}

func TestEqualFrequencyEveryValueMapsToOneBin(t *testing.T) {
	values := []int64{4, 1, 9, 2, 3, 8, 10, 15, 16, 17, 18, 18, 18, 2, 7}
	ef := NewEqualFrequency(values, 4)

	var total int64
	for _, f := range ef.Frequency() {
		total += f
	}
	assert.EqualValues(t, len(values), total)
	for _, v := range values {
		bin := ef.Bin(v)
		assert.GreaterOrEqual(t, bin, 0)
		assert.Less(t, bin, ef.BinCount())
	}
}
