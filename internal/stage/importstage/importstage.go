/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package importstage implements the import stage: invoke the native
// IPFIX collector, one process per ".yaf" file, with the configured
// observation label and ASN/country enrichment databases, producing
// one Parquet file per input. The collector itself is an external
// collaborator reached only through a process boundary, per the
// design notes preferring a process boundary over in-process FFI
// linkage. Grounded on original_source/gnat/src/pipeline/import.rs.
package importstage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

const defaultObservation = "gnat"

// Stage implements pipeline.Stage.
type Stage struct {
	id          pipeline.Identity
	collector   string
	observation string
	asn         string
	country     string
}

// New validates the ASN/country database paths, if given, and resolves
// the collector binary's path from the "collector" option (or PATH).
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	observation := defaultObservation
	if v, ok := options["observation"]; ok && v != "" {
		observation = v
	}

	asn := options["asn"]
	if asn != "" {
		if _, err := os.Stat(asn); err != nil {
			return nil, fmt.Errorf("invalid ASN database path: %q", asn)
		}
	}

	country := options["country"]
	if country != "" {
		if _, err := os.Stat(country); err != nil {
			return nil, fmt.Errorf("invalid COUNTRY database path: %q", country)
		}
	}

	collector := options["collector"]
	if collector == "" {
		collector = "gnat-ipfix-collector"
	}
	if _, err := exec.LookPath(collector); err != nil {
		return nil, fmt.Errorf("collector binary not found: %q: %w", collector, err)
	}

	id.DeleteFiles = true
	return &Stage{
		id:          id,
		collector:   collector,
		observation: observation,
		asn:         asn,
		country:     country,
	}, nil
}

func (s *Stage) Identity() pipeline.Identity { return s.id }

// DetectVersion always reports the newest supported record version:
// ".yaf" inputs have no columnar schema of their own to inspect, the
// collector process produces it.
func (s *Stage) DetectVersion(path string) (int, error) {
	return flow.SupportedVersions[len(flow.SupportedVersions)-1], nil
}

// Process invokes the collector once per file in the batch. Each
// invocation's exit status is the collector's sole opaque signal of
// success or failure, per the two-entry-point ("file_import",
// "socket_import") process-boundary contract.
func (s *Stage) Process(batch []string, version int) error {
	for _, dir := range s.id.Output {
		for _, file := range batch {
			if err := s.importFile(file, dir); err != nil {
				return fmt.Errorf("import %q: %w", file, err)
			}
		}
	}
	return nil
}

func (s *Stage) importFile(file, outputDir string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, s.collector,
		"--input", abs,
		"--output", outputDir,
		"--observation", s.observation,
		"--asn", s.asn,
		"--country", s.country,
	)
	log.Infof("%s: invoking collector for %q", s.id.Command, file)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("collector exited with error: %w", err)
	}
	return nil
}
