/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// VLANTable counts flows per minute, observation point, and destination
// VLAN tag. table.rs declares "pub mod vlan" but its body was not
// retrieved into this pack.
type VLANTable struct{}

func (VLANTable) Name() string { return "vlan" }

func (VLANTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, CAST(dvlan AS TEXT), count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, dvlan
		ORDER BY bucket, observe, dvlan`, "vlan")
}
