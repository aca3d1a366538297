/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// QUICTable counts QUIC flows per minute, observation point, and
// destination address. Grounded on model/table/quic.rs.
type QUICTable struct{}

func (QUICTable) Name() string { return "quic" }

func (QUICTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		WHERE ndpi_appid LIKE 'quic%'
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "quic")
}
