/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// AppIDTable counts flows per minute, observation point, and nDPI
// application id. table.rs declares "pub mod appid" but its body was not
// retrieved into this pack; built from the shared bucketed-count shape
// (model/table/ssh.rs, vpn.rs) applied unfiltered to ndpi_appid.
type AppIDTable struct{}

func (AppIDTable) Name() string { return "appid" }

func (AppIDTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, ndpi_appid, count(*)
		FROM flow_metrics
		GROUP BY bucket, observe, ndpi_appid
		ORDER BY bucket, observe, ndpi_appid`, "appid")
}
