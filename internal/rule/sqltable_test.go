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
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
)

func port(v uint16) *uint16 { return &v }

func openScratchFlowDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(FlowTableDDL)
	require.NoError(t, err)
	return db
}

func TestApplyUpdateAgainstScratchTable(t *testing.T) {
	db := openScratchFlowDB(t)

	records := []flow.Record{
		{ID: uuid.New(), Observe: "office-1", DstPort: 443},
		{ID: uuid.New(), Observe: "branch-1", DstPort: 443},
	}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertBatch(tx, records))

	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionTrigger, Observe: "o", DstPort: port(443)}))
	require.NoError(t, tx.Commit())

	triggers, err := ReadTriggers(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, triggers[records[0].ID.String()])
	assert.EqualValues(t, 0, triggers[records[1].ID.String()])
}

func TestApplyUpdateLaterRuleOverridesEarlier(t *testing.T) {
	db := openScratchFlowDB(t)

	records := []flow.Record{{ID: uuid.New(), Proto: "tcp", DstPort: 22}}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertBatch(tx, records))
	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionTrigger, Proto: "tcp"}))
	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionIgnore, DstPort: port(22)}))
	require.NoError(t, tx.Commit())

	triggers, err := ReadTriggers(db)
	require.NoError(t, err)
	assert.EqualValues(t, -1, triggers[records[0].ID.String()])
}

func TestApplyUpdateTagMembership(t *testing.T) {
	db := openScratchFlowDB(t)

	records := []flow.Record{
		{ID: uuid.New(), Tag: []string{"known", "suspicious"}},
		{ID: uuid.New(), Tag: []string{"known"}},
	}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertBatch(tx, records))
	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionTrigger, Tag: "suspicious"}))
	require.NoError(t, tx.Commit())

	triggers, err := ReadTriggers(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, triggers[records[0].ID.String()])
	assert.EqualValues(t, 0, triggers[records[1].ID.String()])
}

func TestApplyUpdateSeverityThreshold(t *testing.T) {
	db := openScratchFlowDB(t)

	records := []flow.Record{
		{ID: uuid.New(), HBOSSeverity: 5},
		{ID: uuid.New(), HBOSSeverity: 3},
	}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertBatch(tx, records))
	sev := uint8(4)
	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionTrigger, HBOSSeverity: &sev}))
	require.NoError(t, tx.Commit())

	triggers, err := ReadTriggers(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, triggers[records[0].ID.String()])
	assert.EqualValues(t, 0, triggers[records[1].ID.String()])
}

func TestApplyUpdateNoTermsMatchesEverything(t *testing.T) {
	db := openScratchFlowDB(t)

	records := []flow.Record{{ID: uuid.New()}, {ID: uuid.New()}}

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, InsertBatch(tx, records))
	require.NoError(t, ApplyUpdate(tx, Rule{Action: ActionTrigger}))
	require.NoError(t, tx.Commit())

	triggers, err := ReadTriggers(db)
	require.NoError(t, err)
	for _, r := range records {
		assert.EqualValues(t, 1, triggers[r.ID.String()])
	}
}
