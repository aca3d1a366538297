/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// CountryTable counts flows per minute, observation point, and resolved
// source/destination country, as two independent roll-ups. Grounded on
// model/table/country.rs.
type CountryTable struct{}

func (CountryTable) Name() string { return "country" }

func (CountryTable) Insert(db *sql.DB, sink Sink) error {
	if err := queryBucketedCounts(db, sink, `
		SELECT bucket, observe, scountry, count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, scountry
		ORDER BY bucket, observe, scountry`, "scountry"); err != nil {
		return err
	}
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, dcountry, count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, dcountry
		ORDER BY bucket, observe, dcountry`, "dcountry")
}
