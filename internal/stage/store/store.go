/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package store implements the store stage: write a batch's records to
// the output URI's target (local hive-partitioned filesystem or S3),
// partitioned by year/month/day/hour the way the original's
// local_storage/upload_to_s3 COPY statements do. Grounded on
// original_source/gnat/src/pipeline/store.rs.
package store

import (
	"fmt"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	gnatstore "github.com/fidelis-farm/gnat-toolkit/internal/store"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id     pipeline.Identity
	target gnatstore.Target
}

// New resolves the output URI's storage scheme at construction time,
// failing fast on an unsupported scheme or missing S3 credentials, per
// spec.md section 7's "unknown storage URI scheme → fatal at startup".
func New(id pipeline.Identity) (*Stage, error) {
	if len(id.Output) != 1 {
		return nil, fmt.Errorf("store stage requires exactly one --output target, got %d", len(id.Output))
	}
	target, err := gnatstore.New(id.Output[0])
	if err != nil {
		return nil, err
	}
	id.DeleteFiles = true
	return &Stage{id: id, target: target}, nil
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

	byHour := make(map[string][]flow.Record)
	for _, r := range records {
		partition := hourPartition(r)
		byHour[partition] = append(byHour[partition], r)
	}

	for partition, recs := range byHour {
		data, err := flow.WriteBytes(recs)
		if err != nil {
			return fmt.Errorf("encode partition %q: %w", partition, err)
		}
		name := fmt.Sprintf("%s/%s.parquet", partition, pipeline.OutputFilename(s.id.Command, time.Now()))
		if err := s.target.WriteFile(name, data); err != nil {
			return fmt.Errorf("write partition %q: %w", partition, err)
		}
	}
	return nil
}

func hourPartition(r flow.Record) string {
	t := time.UnixMicro(r.StartTime).UTC()
	return fmt.Sprintf("year=%04d/month=%02d/day=%02d/hour=%02d", t.Year(), t.Month(), t.Day(), t.Hour())
}
