/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// ProtoTable counts flows per minute, observation point, and transport
// protocol. table.rs declares "pub mod proto" but its body was not
// retrieved into this pack.
type ProtoTable struct{}

func (ProtoTable) Name() string { return "proto" }

func (ProtoTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, proto, count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, proto
		ORDER BY bucket, observe, proto`, "proto")
}
