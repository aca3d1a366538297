/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package rule implements the rule stage: load a batch of records into
// a scratch flow table, apply each rule's "SET trigger = ... WHERE
// <AND-of-terms>" update in list order, then expand nDPI risk bits for
// every record whose trigger is non-zero. The expansion reads only the
// record's own risk bits: no partition model is consulted and no
// hbos_map is produced. Missing model or
// rule files forward the batch unchanged, per spec.md section 7's
// "Missing model/rule during scoring → non-fatal" policy. Grounded on
// original_source/gnat/src/pipeline/rule.rs and spec.md section 4.5
// step 3 ("create an in-memory flow table from the batch, apply each
// rule statement in list order").
package rule

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/hbos"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	gnatrule "github.com/fidelis-farm/gnat-toolkit/internal/rule"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	modelPath string
	rulePath  string
}

// New validates that the configured model and rule paths look sane;
// their absence at Process time is handled as a pass-through, not a
// startup error, matching the non-fatal scoring policy.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	modelPath, ok := options["model"]
	if !ok || modelPath == "" {
		return nil, fmt.Errorf("required option \"model\" (model database path) is missing")
	}
	rulePath, ok := options["rule"]
	if !ok || rulePath == "" {
		return nil, fmt.Errorf("required option \"rule\" (rule file path) is missing")
	}
	id.DeleteFiles = true
	return &Stage{id: id, modelPath: modelPath, rulePath: rulePath}, nil
}

func (s *Stage) Identity() pipeline.Identity { return s.id }

func (s *Stage) DetectVersion(path string) (int, error) {
	return flow.DetectFileVersion(path)
}

func (s *Stage) Process(batch []string, version int) error {
	records, err := flow.ReadFiles(batch)
	if err != nil {
		return err
	}

	_, modelErr := os.Stat(s.modelPath)
	_, ruleErr := os.Stat(s.rulePath)
	if modelErr != nil || ruleErr != nil {
		data, err := flow.WriteBytes(records)
		if err != nil {
			return fmt.Errorf("encode pass-through batch: %w", err)
		}
		return pipeline.WriteOutputs(s.id, data)
	}

	rules, err := gnatrule.Load(s.rulePath)
	if err != nil {
		return fmt.Errorf("load rule file: %w", err)
	}

	if err := s.applyRules(records, rules); err != nil {
		return fmt.Errorf("apply rules: %w", err)
	}

	for i := range records {
		if records[i].Trigger != flow.TriggerUnset {
			hbos.GenerateTriggerData(&records[i])
		}
	}

	data, err := flow.WriteBytes(records)
	if err != nil {
		return fmt.Errorf("encode ruled batch: %w", err)
	}
	return pipeline.WriteOutputs(s.id, data)
}

// applyRules creates a scratch in-memory flow table from records,
// applies every rule's update statement in list order, then reads the
// resulting trigger column back and joins it into records by id, per
// spec.md section 4.5 step 3.
func (s *Stage) applyRules(records []flow.Record, rules []gnatrule.Rule) error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("open scratch flow table: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(gnatrule.FlowTableDDL); err != nil {
		return fmt.Errorf("create scratch flow table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin scratch flow transaction: %w", err)
	}
	if err := gnatrule.InsertBatch(tx, records); err != nil {
		tx.Rollback()
		return fmt.Errorf("populate scratch flow table: %w", err)
	}
	for i, r := range rules {
		if err := gnatrule.ApplyUpdate(tx, r); err != nil {
			tx.Rollback()
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scratch flow table: %w", err)
	}

	triggers, err := gnatrule.ReadTriggers(db)
	if err != nil {
		return fmt.Errorf("read back triggers: %w", err)
	}
	for i := range records {
		if trigger, ok := triggers[records[i].ID.String()]; ok {
			records[i].Trigger = flow.Trigger(trigger)
		}
	}
	return nil
}
