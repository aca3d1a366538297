/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package pipeline implements the generic file-driven stage framework
// shared by every gnat-* command: identity, the scan/batch/dispatch/
// forward main loop, interval-aligned dispatch, and the BSD-sysexits
// style exit code taxonomy. Grounded on spec.md section 4.1 and the
// stage-loop shapes in original_source/gnat/src/pipeline/*.rs.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

// Identity is a stage's fixed configuration: command name, directories,
// extension filter, dispatch interval, and stream id.
type Identity struct {
	Command     string
	Input       string
	Output      []string
	Pass        string
	Extension   string
	Interval    Interval
	StreamID    uint32
	DeleteFiles bool
}

// Stage is the contract every gnat-* command implements.
type Stage interface {
	Identity() Identity
	// DetectVersion inspects the first file of a batch to determine its
	// schema version. Detection strategy (extension heuristic vs.
	// querying a Parquet column) is stage-specific.
	DetectVersion(path string) (int, error)
	// Process transforms one batch of same-version input files. A
	// returned error terminates the stage with ExitIOErr.
	Process(batch []string, version int) error
}

// SocketStage is implemented by stages with a network-listening
// alternative entry point (spec.md section 4.1's socket()), used in
// place of the file-scan loop.
type SocketStage interface {
	Stage
	Socket() error
}

// Run executes a stage's main loop until termination and returns the
// process exit code to use.
func Run(s Stage) int {
	id := s.Identity()

	if socket, ok := s.(SocketStage); ok {
		if err := socket.Socket(); err != nil {
			log.Errorf("%s: socket listener failed: %s", id.Command, err)
			return ExitIOErr
		}
		return ExitOK
	}

	if err := os.Chdir(id.Input); err != nil {
		log.Errorf("%s: chdir to input directory %q: %s", id.Command, id.Input, err)
		return ExitConfig
	}

	waiter := NewWaiter(id.Interval)
	done := make(chan struct{})

	for {
		result, err := scan(".", id.Extension)
		if err != nil {
			log.Errorf("%s: scan input directory: %s", id.Command, err)
			return ExitConfig
		}

		if len(result.files) > 0 {
			version, err := s.DetectVersion(result.files[0])
			if err != nil {
				log.Errorf("%s: schema version detection: %s", id.Command, err)
				return ExitConfig
			}

			if err := s.Process(result.files, version); err != nil {
				log.Errorf("%s: process batch of %d file(s): %s", id.Command, len(result.files), err)
				return ExitIOErr
			}

			for _, name := range result.files {
				if err := dispose(name, id); err != nil {
					log.Errorf("%s: dispose of %q: %s", id.Command, name, err)
					return ExitIOErr
				}
			}
		}

		if result.more {
			continue
		}

		if id.Interval == IntervalOnce {
			return ExitOK
		}
		if !waiter.Wait(done) {
			return ExitOK
		}
	}
}

// dispose moves a consumed file to the pass directory if configured,
// else deletes it iff the stage's identity requests deletion.
func dispose(name string, id Identity) error {
	if id.Pass != "" {
		dest := filepath.Join(id.Pass, filepath.Base(name))
		if err := os.Rename(name, dest); err != nil {
			return fmt.Errorf("move %q to pass directory: %w", name, err)
		}
		return nil
	}
	if id.DeleteFiles {
		if err := os.Remove(name); err != nil {
			return fmt.Errorf("delete %q: %w", name, err)
		}
	}
	return nil
}

// AtomicWriteFile writes data to a "."-prefixed temp name in dir then
// renames it to name, making the write race-free against concurrent
// scanners. Grounded on spec.md section 5's "Shared resources" note.
func AtomicWriteFile(dir, name string, data []byte) error {
	tmp := filepath.Join(dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	return nil
}
