/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// VPNTable counts flows nDPI classified into the "vpn" category per minute,
// observation point, and destination address. Grounded on
// model/table/vpn.rs.
type VPNTable struct{}

func (VPNTable) Name() string { return "vpn" }

func (VPNTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		WHERE ndpi_category = 'vpn'
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "vpn")
}
