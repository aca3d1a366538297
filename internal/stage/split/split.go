/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package split implements the split stage: read a JSON list of
// {proto, path} filters and, for each incoming batch, write the
// subset of records matching each filter's protocol to that filter's
// own directory. Grounded on
// original_source/gnat/src/pipeline/split.rs.
package split

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// Rule names one split destination: every record whose proto matches
// is written to Path.
type Rule struct {
	Proto string `json:"proto"`
	Path  string `json:"path"`
}

// Stage implements pipeline.Stage. id.Output[0] names the split spec
// file, the way split.rs repurposes its "output" constructor argument.
type Stage struct {
	id    pipeline.Identity
	rules []Rule
}

// New loads and validates the split spec named by id.Output[0]: a
// non-empty JSON array where every entry has both a proto and an
// existing destination path.
func New(id pipeline.Identity) (*Stage, error) {
	if len(id.Output) != 1 {
		return nil, fmt.Errorf("split stage requires exactly one --output path (the split spec file), got %d", len(id.Output))
	}

	data, err := os.ReadFile(id.Output[0])
	if err != nil {
		return nil, fmt.Errorf("read split spec %q: %w", id.Output[0], err)
	}
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse split spec %q: %w", id.Output[0], err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("split spec %q: split list cannot be empty", id.Output[0])
	}
	for _, r := range rules {
		if r.Proto == "" {
			return nil, fmt.Errorf("split spec %q: split filter cannot be empty", id.Output[0])
		}
		if r.Path == "" {
			return nil, fmt.Errorf("split spec %q: split path cannot be empty", id.Output[0])
		}
		if _, err := os.Stat(r.Path); err != nil {
			return nil, fmt.Errorf("split path does not exist: %q", r.Path)
		}
	}

	id.DeleteFiles = true
	return &Stage{id: id, rules: rules}, nil
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

	stamp := strings.ReplaceAll(time.Now().UTC().Format(time.RFC3339), ":", "-")
	for _, rule := range s.rules {
		var matched []flow.Record
		for _, r := range records {
			if r.Proto == rule.Proto {
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			continue
		}

		log.Infof("%s: processing split [%s => %s]", s.id.Command, rule.Proto, rule.Path)

		data, err := flow.WriteBytes(matched)
		if err != nil {
			return fmt.Errorf("encode split %q: %w", rule.Proto, err)
		}
		name := fmt.Sprintf("gnat-%s-%s.%s.parquet", s.id.Command, stamp, rule.Proto)
		if err := pipeline.AtomicWriteFile(rule.Path, name, data); err != nil {
			return fmt.Errorf("write split %q to %q: %w", rule.Proto, rule.Path, err)
		}
	}
	return nil
}
