/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

func openScratchDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(FlowTableDDL)
	require.NoError(t, err)
	return db
}

func sampleBatch() []flow.Record {
	return []flow.Record{
		{Observe: "office-1", StartTime: 0, Proto: "tcp", SrcAddr: "10.0.0.1", DstAddr: "93.184.216.34", SrcBytes: 100, DstBytes: 200, SrcPackets: 3, DstPackets: 4, DstVLAN: 10, SrcASN: 111, DstASN: 222, SrcCountry: "US", DstCountry: "DE", NDPIAppID: "ssh.openssh", NDPICategory: "network"},
		{Observe: "office-1", StartTime: 0, Proto: "udp", SrcAddr: "10.0.0.2", DstAddr: "8.8.8.8", SrcBytes: 50, DstBytes: 60, SrcPackets: 1, DstPackets: 1, DstVLAN: 10, SrcASN: 111, DstASN: 333, SrcCountry: "US", DstCountry: "US", NDPIAppID: "quic.google", NDPICategory: "web"},
		{Observe: "branch-1", StartTime: bucketWidthMicros, Proto: "udp", SrcAddr: "10.1.0.1", DstAddr: "1.1.1.1", SrcBytes: 10, DstBytes: 10, SrcPackets: 1, DstPackets: 1, DstVLAN: 20, SrcASN: 444, DstASN: 555, SrcCountry: "GB", DstCountry: "US", NDPIAppID: "dns.doh", NDPICategory: "vpn"},
	}
}

func TestLoadBatchAndRunAll(t *testing.T) {
	sink := &SliceSink{}
	require.NoError(t, RunAll(sampleBatch(), sink))
	assert.NotEmpty(t, sink.Records)

	byName := map[string]int{}
	for _, r := range sink.Records {
		byName[r.Name]++
	}
	for _, want := range []string{"bytes", "packets", "proto", "scountry", "dcountry", "ssh", "quic", "vpn", "doh", "ip", "appid", "sasn", "dasn", "vlan", "dns", "flow"} {
		assert.Greaterf(t, byName[want], 0, "expected at least one %q row", want)
	}
}

func TestBytesTableSumsBothDirections(t *testing.T) {
	db := openScratchDB(t)
	require.NoError(t, LoadBatch(db, sampleBatch()))

	sink := &SliceSink{}
	require.NoError(t, BytesTable{}.Insert(db, sink))

	var sbytesTotal, dbytesTotal float64
	for _, r := range sink.Records {
		switch r.Key {
		case "sbytes":
			sbytesTotal += r.Value
		case "dbytes":
			dbytesTotal += r.Value
		}
	}
	assert.Equal(t, float64(160), sbytesTotal)
	assert.Equal(t, float64(270), dbytesTotal)
}

func TestVPNTableFiltersByCategory(t *testing.T) {
	db := openScratchDB(t)
	require.NoError(t, LoadBatch(db, sampleBatch()))

	sink := &SliceSink{}
	require.NoError(t, VPNTable{}.Insert(db, sink))
	require.Len(t, sink.Records, 1)
	assert.Equal(t, "branch-1", sink.Records[0].Observe)
	assert.Equal(t, "1.1.1.1", sink.Records[0].Key)
}

func TestSSHTableFiltersByAppIDPrefix(t *testing.T) {
	db := openScratchDB(t)
	require.NoError(t, LoadBatch(db, sampleBatch()))

	sink := &SliceSink{}
	require.NoError(t, SSHTable{}.Insert(db, sink))
	require.Len(t, sink.Records, 1)
	assert.Equal(t, "93.184.216.34", sink.Records[0].Key)
}
