/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package collect implements the collect stage: a SocketStage that
// subscribes to a NATS subject carrying Parquet-encoded flow record
// batches, accumulates them, and rotates an output Parquet file every
// configured interval. Substitutes for the native IPFIX socket
// importer (out of scope; see spec.md's "Explicitly out of scope")
// using this module's one message-transport dependency. Grounded on
// original_source/gnat/src/pipeline/collector.rs for option shape and
// rotation semantics; socket() body is new, backed by pkg/nats.
package collect

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	natstransport "github.com/fidelis-farm/gnat-toolkit/pkg/nats"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

const (
	defaultSubject        = "gnat.flow"
	defaultObservation    = "gnat"
	defaultRotateInterval = 60 * time.Second
)

// Stage implements pipeline.SocketStage.
type Stage struct {
	id          pipeline.Identity
	natsCfg     natstransport.Config
	subject     string
	observation string
	rotate      time.Duration
}

// New treats id.Input as the NATS server address, the same way
// CollectorProcessor::get_input returns the listen host rather than a
// scan directory. It accepts "subject", "observation", "username",
// "password", "creds", and "rotate_interval" (seconds) options,
// mirroring collector.rs's option defaults where a NATS equivalent
// exists.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	if id.Input == "" {
		return nil, fmt.Errorf("--input (nats server address) is required")
	}
	address := id.Input

	subject := defaultSubject
	if v, ok := options["subject"]; ok && v != "" {
		subject = v
	}
	observation := defaultObservation
	if v, ok := options["observation"]; ok && v != "" {
		observation = v
	}
	rotate := defaultRotateInterval
	if v, ok := options["rotate_interval"]; ok && v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("option \"rotate_interval\": %w", err)
		}
		rotate = time.Duration(seconds) * time.Second
	}

	id.DeleteFiles = true
	return &Stage{
		id:          id,
		subject:     subject,
		observation: observation,
		rotate:      rotate,
		natsCfg: natstransport.Config{
			Address:       address,
			Username:      options["username"],
			Password:      options["password"],
			CredsFilePath: options["creds"],
		},
	}, nil
}

func (s *Stage) Identity() pipeline.Identity { return s.id }

func (s *Stage) DetectVersion(path string) (int, error) {
	return flow.DetectFileVersion(path)
}

// Process is never called: Socket takes over the stage's main loop.
func (s *Stage) Process(batch []string, version int) error {
	return fmt.Errorf("collect stage has no file-driven Process; it is a socket stage")
}

// Socket subscribes to the configured NATS subject and rotates an
// output file every s.rotate, the NATS-backed substitute for
// collector.rs's unsafe_ifpix_socket_import/rotate_interval.
func (s *Stage) Socket() error {
	client, err := natstransport.NewClient(s.natsCfg)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer client.Close()

	var mu sync.Mutex
	var buffered []flow.Record

	handler := func(subject string, data []byte) {
		records, err := flow.ReadBytes(data)
		if err != nil {
			log.Warnf("%s: decode message on %q: %s", s.id.Command, subject, err)
			return
		}
		for i := range records {
			records[i].Stream = s.id.StreamID
			if records[i].Observe == "" {
				records[i].Observe = s.observation
			}
		}
		mu.Lock()
		buffered = append(buffered, records...)
		mu.Unlock()
	}

	if err := client.Subscribe(s.subject, handler); err != nil {
		return fmt.Errorf("subscribe to %q: %w", s.subject, err)
	}
	log.Infof("%s: subscribed to %q, rotating every %s", s.id.Command, s.subject, s.rotate)

	ticker := time.NewTicker(s.rotate)
	defer ticker.Stop()
	for range ticker.C {
		mu.Lock()
		records := buffered
		buffered = nil
		mu.Unlock()

		if len(records) == 0 {
			continue
		}
		data, err := flow.WriteBytes(records)
		if err != nil {
			log.Errorf("%s: encode rotated batch of %d record(s): %s", s.id.Command, len(records), err)
			continue
		}
		if err := pipeline.WriteOutputs(s.id, data); err != nil {
			log.Errorf("%s: write rotated batch: %s", s.id.Command, err)
		}
	}
	return nil
}
