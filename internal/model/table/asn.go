/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// ASNTable counts flows per minute, observation point, and source/
// destination autonomous system number, mirroring CountryTable's two-sided
// shape. table.rs declares "pub mod asn" but its body was not retrieved
// into this pack.
type ASNTable struct{}

func (ASNTable) Name() string { return "asn" }

func (ASNTable) Insert(db *sql.DB, sink Sink) error {
	if err := queryBucketedCounts(db, sink, `
		SELECT bucket, observe, CAST(sasn AS TEXT), count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, sasn
		ORDER BY bucket, observe, sasn`, "sasn"); err != nil {
		return err
	}
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, CAST(dasn AS TEXT), count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, dasn
		ORDER BY bucket, observe, dasn`, "dasn")
}
