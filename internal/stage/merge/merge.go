/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package merge implements the merge stage: union every file in a
// batch into one Parquet output, no filtering or transformation.
// Grounded on original_source/gnat/src/pipeline/merge.rs.
package merge

import (
	"fmt"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id pipeline.Identity
}

// New builds a merge stage. It takes no options.
func New(id pipeline.Identity) *Stage {
	id.DeleteFiles = true
	return &Stage{id: id}
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
	data, err := flow.WriteBytes(records)
	if err != nil {
		return fmt.Errorf("encode merged batch: %w", err)
	}
	return pipeline.WriteOutputs(s.id, data)
}
