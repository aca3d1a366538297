/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// FlowTable counts total flows per minute and observation point,
// independent of any other dimension. table.rs declares "pub mod flow" but
// its body was not retrieved into this pack; this is the degenerate
// bucketed-count query with no grouping dimension beyond bucket/observe.
type FlowTable struct{}

func (FlowTable) Name() string { return "flow" }

func (FlowTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, 'count' , count(*)
		FROM flow_metrics
		GROUP BY bucket, observe
		ORDER BY bucket, observe`, "flow")
}
