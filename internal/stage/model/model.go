/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package model implements the HBOS train stage: enumerate trainable
// partitions in a batch, build one feature histogram set per partition,
// derive severity thresholds, and atomically install the result as the
// on-disk model database. Grounded on spec.md section 4.4 "Train" and
// "Serialize", and original_source/gnat/src/model/histogram/
// histogram_model.rs's train/serialize flow.
package model

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/hbos"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/histogram"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	modelPath string
}

// New requires the "model" option naming the model database file to
// build.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	modelPath, ok := options["model"]
	if !ok || modelPath == "" {
		return nil, fmt.Errorf("required option \"model\" (model database path) is missing")
	}
	id.DeleteFiles = id.Pass == ""
	return &Stage{id: id, modelPath: modelPath}, nil
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

	partitions := flow.TrainablePartitions(records)
	if len(partitions) == 0 {
		log.Infof("%s: no trainable partitions in batch of %d record(s)", s.id.Command, len(records))
		return nil
	}

	tmpPath := s.modelPath + ".tmp"
	os.Remove(tmpPath)

	db, err := sql.Open("sqlite3", tmpPath)
	if err != nil {
		return fmt.Errorf("create model database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(histogram.DDL); err != nil {
		return fmt.Errorf("initialize model schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin model transaction: %w", err)
	}

	for key, recs := range partitions {
		log.Infof("%s: training partition %s/%d/%s on %d record(s)", s.id.Command, key.Observe, key.VLAN, key.Proto, len(recs))
		m := hbos.BuildPartitionModel(key, recs, hbos.DefaultFeatureSpecs)
		if err := m.Serialize(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("serialize partition %s/%d/%s: %w", key.Observe, key.VLAN, key.Proto, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit model transaction: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close model database: %w", err)
	}

	if _, err := os.Stat(s.modelPath); err == nil {
		backup := fmt.Sprintf("%s.%s", s.modelPath, strings.ReplaceAll(time.Now().UTC().Format(time.RFC3339), ":", "-"))
		if err := os.Rename(s.modelPath, backup); err != nil {
			return fmt.Errorf("archive previous model: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.modelPath); err != nil {
		return fmt.Errorf("install new model: %w", err)
	}
	return nil
}
