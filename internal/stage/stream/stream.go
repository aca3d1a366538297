/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package stream implements the stream stage: read a JSON list of
// {tag, filter, path} targets and, for each incoming batch, evaluate
// each target's filter expression against every record, tag the
// matches, and write them to the target's own directory. Grounded on
// original_source/gnat/src/pipeline/stream.rs.
package stream

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	gnatrule "github.com/fidelis-farm/gnat-toolkit/internal/rule"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// Target names one stream destination: every record matching Filter
// (an expr-lang boolean expression, or "*" for all records) is tagged
// with Tag and written to Path.
type Target struct {
	Tag    string `json:"tag"`
	Filter string `json:"filter"`
	Path   string `json:"path"`
}

// Stage implements pipeline.Stage. id.Output[0] names the stream spec
// file, the way stream.rs repurposes its "output" constructor argument.
type Stage struct {
	id      pipeline.Identity
	targets []Target
}

// New loads and validates the stream spec named by id.Output[0]: a
// non-empty JSON array where every entry has a non-empty filter and an
// existing destination path.
func New(id pipeline.Identity) (*Stage, error) {
	if len(id.Output) != 1 {
		return nil, fmt.Errorf("stream stage requires exactly one --output path (the stream spec file), got %d", len(id.Output))
	}

	data, err := os.ReadFile(id.Output[0])
	if err != nil {
		return nil, fmt.Errorf("read stream spec %q: %w", id.Output[0], err)
	}
	var targets []Target
	if err := json.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("parse stream spec %q: %w", id.Output[0], err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("stream spec %q: stream list cannot be empty", id.Output[0])
	}
	for _, t := range targets {
		if t.Filter == "" {
			return nil, fmt.Errorf("stream spec %q: stream filter cannot be empty", id.Output[0])
		}
		if t.Path == "" {
			return nil, fmt.Errorf("stream spec %q: stream path cannot be empty", id.Output[0])
		}
		if _, err := os.Stat(t.Path); err != nil {
			return nil, fmt.Errorf("stream path does not exist: %q", t.Path)
		}
		if _, err := gnatrule.CompileExpr(t.Filter); err != nil {
			return nil, fmt.Errorf("stream %q: %w", t.Tag, err)
		}
	}

	id.DeleteFiles = true
	return &Stage{id: id, targets: targets}, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
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
	for i, target := range s.targets {
		log.Infof("%s: processing stream [%s | %s]", s.id.Command, target.Tag, target.Path)

		predicate, err := gnatrule.CompileExpr(target.Filter)
		if err != nil {
			return fmt.Errorf("stream %q: %w", target.Tag, err)
		}

		var matched []flow.Record
		for _, r := range records {
			ok, err := predicate.Matches(r)
			if err != nil {
				return fmt.Errorf("stream %q: %w", target.Tag, err)
			}
			if !ok {
				continue
			}
			if !hasTag(r.Tag, target.Tag) {
				r.Tag = append(append([]string{}, r.Tag...), target.Tag)
			}
			matched = append(matched, r)
		}
		if len(matched) == 0 {
			continue
		}

		data, err := flow.WriteBytes(matched)
		if err != nil {
			return fmt.Errorf("encode stream %q: %w", target.Tag, err)
		}
		name := fmt.Sprintf("gnat-%s-%s.%d.parquet", s.id.Command, stamp, i)
		if err := pipeline.AtomicWriteFile(target.Path, name, data); err != nil {
			return fmt.Errorf("write stream %q to %q: %w", target.Tag, target.Path, err)
		}
	}
	return nil
}
