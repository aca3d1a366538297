/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// DoHTable counts DNS-over-HTTPS flows per minute, observation point, and
// destination address. Grounded on model/table/doh.rs.
type DoHTable struct{}

func (DoHTable) Name() string { return "doh" }

func (DoHTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		WHERE ndpi_appid LIKE 'dns.doh%'
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "doh")
}
