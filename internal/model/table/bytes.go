/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// BytesTable sums source and destination byte counts per minute and
// observation point. Grounded on model/table/bytes.rs.
type BytesTable struct{}

func (BytesTable) Name() string { return "bytes" }

func (BytesTable) Insert(db *sql.DB, sink Sink) error {
	if err := queryBucketedSum(db, sink, `
		SELECT bucket, observe, sum(sbytes)
		FROM flow_metrics
		GROUP BY bucket, observe
		ORDER BY bucket, observe`, "bytes", "sbytes"); err != nil {
		return err
	}
	return queryBucketedSum(db, sink, `
		SELECT bucket, observe, sum(dbytes)
		FROM flow_metrics
		GROUP BY bucket, observe
		ORDER BY bucket, observe`, "bytes", "dbytes")
}
