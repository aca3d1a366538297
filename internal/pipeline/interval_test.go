/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaiterFieldExtraction(t *testing.T) {
	w := &Waiter{interval: IntervalMinute}
	t1 := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, 30, w.field(t1))

	w.interval = IntervalHour
	assert.Equal(t, 10, w.field(t1))

	w.interval = IntervalDay
	t2 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, w.field(t2), w.field(t3))
}

func TestWaiterSecondReturnsOnTick(t *testing.T) {
	w := NewWaiter(IntervalSecond)
	done := make(chan struct{})
	ok := w.Wait(done)
	assert.True(t, ok)
}
