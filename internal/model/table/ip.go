/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// IPTable counts flows per minute, observation point, and destination
// address, independent of any nDPI classification filter. table.rs
// declares "pub mod ip" but its body was not retrieved into this pack;
// built from the unfiltered version of SSHTable's shape.
type IPTable struct{}

func (IPTable) Name() string { return "ip" }

func (IPTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "ip")
}
