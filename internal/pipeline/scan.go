/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxBatch caps how many files one scan collects before processing,
// per spec.md section 4.1.
const MaxBatch = 64

// scanResult is one pass over the input directory.
type scanResult struct {
	files []string
	more  bool
}

// scan collects up to MaxBatch eligible files from dir: names that don't
// start with "." and end with ext, skipping any ".yaf" file whose
// "<path>.lock" sibling exists. Entries are returned in sorted name
// order for deterministic batch composition across runs.
func scan(dir, ext string) (scanResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return scanResult{}, err
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.HasSuffix(name, ext) {
			continue
		}
		if strings.HasSuffix(name, ".yaf") {
			if _, err := os.Stat(filepath.Join(dir, name+".lock")); err == nil {
				continue
			}
		}
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	if len(candidates) > MaxBatch {
		return scanResult{files: candidates[:MaxBatch], more: true}, nil
	}
	return scanResult{files: candidates, more: false}, nil
}
