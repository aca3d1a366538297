/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// DNSTable counts DNS flows per minute, observation point, and destination
// address. table.rs declares "pub mod dns" but its body was not retrieved
// into this pack; built from DoHTable's shape with the narrower doh prefix
// relaxed to the general dns nDPI application family.
type DNSTable struct{}

func (DNSTable) Name() string { return "dns" }

func (DNSTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		WHERE ndpi_appid LIKE 'dns%'
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "dns")
}
