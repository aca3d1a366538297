/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package histogram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringCategoryUnseenProbability(t *testing.T) {
	values := make([]string, 99)
	for i := range values {
		values[i] = fmt.Sprintf("app-%d", i)
	}
	h := BuildStringCategoryHistogram("ndpi_appid", "1=1", values, true)

	assert.InDelta(t, 1.0/100.0, h.Probability("never-seen"), 1e-9)
	assert.InDelta(t, 2.0/100.0, h.Probability(values[0]), 1e-9)
}

func TestStringCategorySkipsUnknownForAppID(t *testing.T) {
	h := BuildStringCategoryHistogram("ndpi_appid", "1=1", []string{"http", "unknown", "unknown", "dns"}, true)
	assert.EqualValues(t, 2, h.Count())
}

func TestNumericCategoryModulusReduction(t *testing.T) {
	h := BuildNumericCategoryHistogram("dport", "1=1", DefaultPortModulus, []int64{443, 443 + DefaultPortModulus})
	assert.EqualValues(t, 2, h.Count())
	p := h.Probability(443)
	assert.InDelta(t, 3.0/3.0, p, 1e-9) // both values collapse to the same bucket: (2+1)/(2+1)
}

func TestIPAddrKeyClassMasking(t *testing.T) {
	// Class A (0-127): /8 mask zeroes octets 2-4, so low16 depends only on octet 1.
	a1 := IPAddrKey("10.1.2.3")
	a2 := IPAddrKey("10.9.9.9")
	assert.Equal(t, a1, a2)

	// Class B (128-191): /16 mask leaves octets 1-2 intact.
	b1 := IPAddrKey("128.5.1.1")
	b2 := IPAddrKey("128.5.9.9")
	assert.Equal(t, b1, b2)

	b3 := IPAddrKey("128.6.1.1")
	assert.NotEqual(t, b1, b3)
}

func TestIPAddrKeyWithinHashSpace(t *testing.T) {
	for _, addr := range []string{"192.168.1.1", "224.0.0.1", "255.255.255.255", "::1", "2001:db8::1"} {
		key := IPAddrKey(addr)
		assert.GreaterOrEqual(t, key, int64(0))
		assert.Less(t, key, int64(IPAddrHashSpace))
	}
}

func TestTimeCategoryHourOfDay(t *testing.T) {
	// 1970-01-01T13:00:00Z in microseconds.
	ts := int64(13 * 3600 * 1_000_000)
	assert.EqualValues(t, 13, HourOfDay(ts))
}

func TestNumberHistogramProbabilityBounds(t *testing.T) {
	values := make([]int64, 500)
	for i := range values {
		values[i] = int64(i)
	}
	h := BuildNumberHistogram("dur", "1=1", values)

	for _, v := range []int64{0, 250, 499, -10, 10000} {
		p := h.Probability(v)
		assert.Greater(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}
