/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package hbos implements the score stage: load the trained model
// database, score every record in a batch against its partition's
// model, and populate hbos_score/hbos_severity/hbos_map. Missing model
// forwards the batch unchanged; a record whose partition has no model
// is skipped with a warning. Reloads the model whenever its file's
// modification time changes. Grounded on spec.md section 4.4 "Score"
// and "Failure semantics".
package hbos

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/hbos"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	modelPath string

	mu        sync.Mutex
	loadedAt  time.Time
	models    map[flow.PartitionKey]*hbos.PartitionModel
}

// New requires the "model" option naming the model database to score
// against.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	modelPath, ok := options["model"]
	if !ok || modelPath == "" {
		return nil, fmt.Errorf("required option \"model\" (model database path) is missing")
	}
	id.DeleteFiles = true
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

	models, err := s.currentModels()
	if err != nil {
		return fmt.Errorf("load model database: %w", err)
	}
	if models == nil {
		data, err := flow.WriteBytes(records)
		if err != nil {
			return fmt.Errorf("encode pass-through batch: %w", err)
		}
		return pipeline.WriteOutputs(s.id, data)
	}

	skipped := make(map[flow.PartitionKey]bool)
	for i := range records {
		key := records[i].Partition()
		m, ok := models[key]
		if !ok {
			if !skipped[key] {
				log.Warnf("%s: no model for partition %s/%d/%s, skipping its rows", s.id.Command, key.Observe, key.VLAN, key.Proto)
				skipped[key] = true
			}
			continue
		}
		m.Apply(&records[i])
	}

	data, err := flow.WriteBytes(records)
	if err != nil {
		return fmt.Errorf("encode scored batch: %w", err)
	}
	return pipeline.WriteOutputs(s.id, data)
}

// currentModels returns nil if the model file does not exist (the
// pass-through case), else the cached model set, reloading it first if
// the file's modification time has advanced since the last load.
func (s *Stage) currentModels() (map[flow.PartitionKey]*hbos.PartitionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.modelPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.models != nil && !info.ModTime().After(s.loadedAt) {
		return s.models, nil
	}

	models, err := loadModels(s.modelPath)
	if err != nil {
		return nil, err
	}
	s.models = models
	s.loadedAt = info.ModTime()
	log.Infof("%s: loaded %d partition model(s) from %q", s.id.Command, len(models), s.modelPath)
	return models, nil
}

func loadModels(path string) (map[flow.PartitionKey]*hbos.PartitionModel, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open model database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT DISTINCT observe, vlan, proto FROM hbos_summary`)
	if err != nil {
		return nil, fmt.Errorf("query distinct partitions: %w", err)
	}
	var keys []flow.PartitionKey
	for rows.Next() {
		var key flow.PartitionKey
		if err := rows.Scan(&key.Observe, &key.VLAN, &key.Proto); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan partition row: %w", err)
		}
		keys = append(keys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[flow.PartitionKey]*hbos.PartitionModel, len(keys))
	for _, key := range keys {
		m, err := hbos.LoadPartitionModel(db, key, hbos.DefaultFeatureSpecs)
		if err != nil {
			return nil, fmt.Errorf("load partition %s/%d/%s: %w", key.Observe, key.VLAN, key.Proto, err)
		}
		out[key] = m
	}
	return out, nil
}
