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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

func sampleRecords(n int) []flow.Record {
	records := make([]flow.Record, n)
	for i := range records {
		records[i] = flow.Record{
			ID:         uuid.New(),
			Observe:    "sensor-1",
			Proto:      "tcp",
			DstVLAN:    100,
			StartTime:  int64(i) * 1_000_000,
			Duration:   uint32(i % 50),
			SrcBytes:   uint64(100 + i),
			DstBytes:   uint64(200 + i),
			SrcPackets: uint64(i % 10),
			DstPackets: uint64(i % 7),
			SrcAddr:    "10.1.2.3",
			DstAddr:    "10.1.2.4",
			SrcPort:    uint16(1024 + i%1000),
			DstPort:    443,
			SrcASN:     uint32(64512 + i%5),
			DstASN:     65000,
			NDPIAppID:  "http",
		}
	}
	return records
}

func TestBuildPartitionModelTrainsEveryFeature(t *testing.T) {
	records := sampleRecords(200)
	key := records[0].Partition()
	m := BuildPartitionModel(key, records, DefaultFeatureSpecs)

	assert.Len(t, m.Features, len(DefaultFeatureSpecs))
	assert.Equal(t, key, m.Key)
}

func TestScoreRoundTripIsDeterministic(t *testing.T) {
	records := sampleRecords(1000)
	key := records[0].Partition()
	m := BuildPartitionModel(key, records, DefaultFeatureSpecs)

	for _, r := range records[:20] {
		score1, sev1, _ := m.Score(r)
		score2, sev2, _ := m.Score(r)
		assert.InDelta(t, score1, score2, 1e-9)
		assert.Equal(t, sev1, sev2)
	}
}

func TestApplyPopulatesRecordFields(t *testing.T) {
	records := sampleRecords(500)
	key := records[0].Partition()
	m := BuildPartitionModel(key, records, DefaultFeatureSpecs)

	r := records[0]
	m.Apply(&r)

	assert.Greater(t, r.HBOSScore, 0.0)
	assert.NotNil(t, r.HBOSMap)
	assert.LessOrEqual(t, r.HBOSSeverity, uint8(flow.SeveritySevere))
}

func TestThresholdsAreMonotone(t *testing.T) {
	records := sampleRecords(300)
	key := records[0].Partition()
	m := BuildPartitionModel(key, records, DefaultFeatureSpecs)

	require.LessOrEqual(t, m.Thresholds.Low, m.Thresholds.Medium)
	require.LessOrEqual(t, m.Thresholds.Medium, m.Thresholds.High)
	require.LessOrEqual(t, m.Thresholds.High, m.Thresholds.Severe)
}

func TestGenerateTriggerDataExpandsRiskBits(t *testing.T) {
	r := &flow.Record{NDPIRiskBits: (1 << 1) | (1 << 6)} // "possible xss", "tls selfsigned cert"
	GenerateTriggerData(r)

	assert.ElementsMatch(t, []string{"possible xss", "tls selfsigned cert"}, r.NDPIRiskList)
	assert.EqualValues(t, 2, r.NDPIRiskScore)
	assert.EqualValues(t, flow.SeverityLow, r.NDPIRiskSeverity)
}

func TestGenerateTriggerDataNoRisk(t *testing.T) {
	r := &flow.Record{}
	GenerateTriggerData(r)

	assert.Empty(t, r.NDPIRiskList)
	assert.EqualValues(t, flow.SeverityNone, r.NDPIRiskSeverity)
}

func TestRiskNameByIndexUnknown(t *testing.T) {
	assert.Equal(t, "unknown", RiskNameByIndex(1000))
	assert.Equal(t, "none", RiskNameByIndex(0))
	assert.Equal(t, "obfuscated", RiskNameByIndex(56))
}
