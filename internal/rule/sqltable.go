/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package rule

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

// FlowTableDDL creates the ephemeral in-memory "flow" table the rule
// stage's literal SQL path runs UPDATE statements against, per
// spec.md section 4.5 step 3: "create an in-memory flow table from the
// batch, apply each rule statement in list order". Only the columns a
// rule predicate can reference are carried; the full record stays in
// the caller's Parquet batch and is re-joined by id afterward.
const FlowTableDDL = `
CREATE TABLE flow (
	id            TEXT PRIMARY KEY,
	observe       TEXT NOT NULL,
	proto         TEXT NOT NULL,
	saddr         TEXT NOT NULL,
	sport         INTEGER NOT NULL,
	daddr         TEXT NOT NULL,
	dport         INTEGER NOT NULL,
	appid         TEXT NOT NULL,
	orient        TEXT NOT NULL,
	tag           TEXT NOT NULL,
	risk_severity INTEGER NOT NULL,
	hbos_severity INTEGER NOT NULL,
	trigger       INTEGER NOT NULL
);
`

// InsertBatch populates the flow table from a batch of records. Tag
// sets are flattened to a comma-delimited, comma-bounded string so that
// squirrel's LIKE-based membership check can match a single value
// inside it.
func InsertBatch(tx *sql.Tx, records []flow.Record) error {
	stmt, err := tx.Prepare(
		`INSERT INTO flow (id, observe, proto, saddr, sport, daddr, dport, appid, orient, tag, risk_severity, hbos_severity, trigger)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare flow insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tag := ","
		if len(r.Tag) > 0 {
			tag = "," + strings.Join(r.Tag, ",") + ","
		}
		if _, err := stmt.Exec(
			r.ID.String(), r.Observe, r.Proto, r.SrcAddr, r.SrcPort, r.DstAddr, r.DstPort,
			r.NDPIAppID, r.Orient, tag, r.NDPIRiskSeverity, r.HBOSSeverity, int8(r.Trigger),
		); err != nil {
			return fmt.Errorf("insert flow row %s: %w", r.ID, err)
		}
	}
	return nil
}

// ApplyUpdate translates one rule into a parameterized
// "UPDATE flow SET trigger = ? WHERE <AND-of-terms>" statement via
// squirrel and executes it against the scratch flow table.
func ApplyUpdate(tx *sql.Tx, r Rule) error {
	value, err := r.TriggerValue()
	if err != nil {
		return err
	}

	stmt := sq.Update("flow").Set("trigger", int8(value))

	var where sq.And
	if r.Observe != "" {
		where = append(where, sq.Like{"observe": r.Observe + "%"})
	}
	if r.Proto != "" {
		where = append(where, sq.Eq{"proto": r.Proto})
	}
	if r.SrcAddr != "" {
		where = append(where, sq.Like{"saddr": r.SrcAddr + "%"})
	}
	if r.SrcPort != nil {
		where = append(where, sq.Eq{"sport": *r.SrcPort})
	}
	if r.DstAddr != "" {
		where = append(where, sq.Like{"daddr": r.DstAddr + "%"})
	}
	if r.DstPort != nil {
		where = append(where, sq.Eq{"dport": *r.DstPort})
	}
	if r.AppID != "" {
		where = append(where, sq.Like{"appid": r.AppID + "%"})
	}
	if r.Orient != "" {
		where = append(where, sq.Like{"orient": r.Orient + "%"})
	}
	if r.Tag != "" {
		where = append(where, sq.Like{"tag": "%," + r.Tag + ",%"})
	}
	if r.RiskSeverity != nil {
		where = append(where, sq.GtOrEq{"risk_severity": *r.RiskSeverity})
	}
	if r.HBOSSeverity != nil {
		where = append(where, sq.GtOrEq{"hbos_severity": *r.HBOSSeverity})
	}
	if len(where) > 0 {
		stmt = stmt.Where(where)
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("build rule update statement: %w", err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("apply rule update: %w", err)
	}
	return nil
}

// ReadTriggers reads back the trigger column keyed by record id, for
// the caller to re-join into the Parquet batch it started from.
func ReadTriggers(db *sql.DB) (map[string]int8, error) {
	rows, err := db.Query(`SELECT id, trigger FROM flow`)
	if err != nil {
		return nil, fmt.Errorf("read flow triggers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int8)
	for rows.Next() {
		var id string
		var trigger int8
		if err := rows.Scan(&id, &trigger); err != nil {
			return nil, fmt.Errorf("scan flow trigger row: %w", err)
		}
		out[id] = trigger
	}
	return out, rows.Err()
}
