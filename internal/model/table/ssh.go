/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package table

import "database/sql"

// SSHTable counts SSH flows per minute, observation point, and
// destination address. Grounded on model/table/ssh.rs.
type SSHTable struct{}

func (SSHTable) Name() string { return "ssh" }

func (SSHTable) Insert(db *sql.DB, sink Sink) error {
	return queryBucketedCounts(db, sink, `
		SELECT bucket, observe, daddr, count(*)
		FROM flow_metrics
		WHERE ndpi_appid LIKE 'ssh%'
		GROUP BY bucket, observe, daddr
		ORDER BY bucket, observe, daddr`, "ssh")
}
