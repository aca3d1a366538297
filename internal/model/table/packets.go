/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// PacketsTable sums source and destination packet counts per minute and
// observation point. table.rs declares "pub mod packets" but its body was
// not retrieved into this pack; built from the same sum-by-bucket shape as
// BytesTable applied to spkts/dpkts.
type PacketsTable struct{}

func (PacketsTable) Name() string { return "packets" }

func (PacketsTable) Insert(db *sql.DB, sink Sink) error {
	if err := queryBucketedSum(db, sink, `
		SELECT bucket, observe, sum(spkts)
		FROM flow_metrics
		GROUP BY bucket, observe
		ORDER BY bucket, observe`, "packets", "spkts"); err != nil {
		return err
	}
	return queryBucketedSum(db, sink, `
		SELECT bucket, observe, sum(dpkts)
		FROM flow_metrics
		GROUP BY bucket, observe
		ORDER BY bucket, observe`, "packets", "dpkts")
}
