/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package export implements the export stage: project a batch's
// records onto a field list and write them as CSV or newline-delimited
// JSON. Grounded on original_source/gnat/src/pipeline/export.rs.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
)

// Stage implements pipeline.Stage.
type Stage struct {
	id     pipeline.Identity
	format string
	fields []string
}

// New validates the output directory exists and, if a "fields" option
// is given, that every named field is a recognized flow.Field. An
// empty field list exports every field, in flow.Fields order. "format"
// defaults to "json" and accepts "csv"; anything else falls back to
// json, matching export.rs's unmatched-format default.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	for _, dir := range id.Output {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("output directory %q does not exist", dir)
		}
	}

	format := "json"
	if v, ok := options["format"]; ok && v != "" {
		format = v
	}

	fields := flow.Fields
	if v, ok := options["fields"]; ok && v != "" {
		var selected []string
		for _, f := range strings.Split(v, ",") {
			f = strings.TrimSpace(f)
			if !flow.IsField(f) {
				return nil, fmt.Errorf("invalid field: %q", f)
			}
			selected = append(selected, f)
		}
		fields = selected
	}

	id.DeleteFiles = true
	return &Stage{id: id, format: format, fields: fields}, nil
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

	ext := "json"
	if s.format == "csv" {
		ext = "csv"
	}
	base := fmt.Sprintf("gnat-%s-%s.%s", s.id.Command, strings.ReplaceAll(time.Now().UTC().Format(time.RFC3339), ":", "-"), ext)

	for _, dir := range s.id.Output {
		path := filepath.Join(dir, base)
		var err error
		if s.format == "csv" {
			err = s.writeCSV(path, records)
		} else {
			err = s.writeJSON(path, records)
		}
		if err != nil {
			return fmt.Errorf("export to %q: %w", path, err)
		}
	}
	return nil
}

func (s *Stage) writeCSV(path string, records []flow.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(s.fields); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, len(s.fields))
		for i, name := range s.fields {
			v, err := r.FieldValue(name)
			if err != nil {
				return err
			}
			row[i] = formatValue(v)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Stage) writeJSON(path string, records []flow.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, r := range records {
		row := make(map[string]any, len(s.fields))
		for _, name := range s.fields {
			v, err := r.FieldValue(name)
			if err != nil {
				return err
			}
			row[name] = v
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	if ss, ok := v.([]string); ok {
		return strings.Join(ss, ";")
	}
	return fmt.Sprint(v)
}
