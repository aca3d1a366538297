/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package cache implements the cache stage: merge each incoming batch
// into a persistent on-disk flow cache database, optionally purging
// rows older than a retention window. Grounded on
// original_source/gnat/src/pipeline/cache.rs.
package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

const cacheTableDDL = `
CREATE TABLE IF NOT EXISTS flow (
	id         TEXT PRIMARY KEY,
	stream     INTEGER NOT NULL,
	observe    TEXT NOT NULL,
	stime      INTEGER NOT NULL,
	etime      INTEGER NOT NULL,
	proto      TEXT NOT NULL,
	saddr      TEXT NOT NULL,
	daddr      TEXT NOT NULL,
	sport      INTEGER NOT NULL,
	dport      INTEGER NOT NULL,
	sbytes     INTEGER NOT NULL,
	dbytes     INTEGER NOT NULL,
	ndpi_appid TEXT NOT NULL
);
`

// cacheRow is the sqlx-bound projection of flow.Record stored in the
// cache database. A reduced subset of the record's columns is carried;
// the record's authoritative form stays in Parquet.
type cacheRow struct {
	ID        string `db:"id"`
	Stream    uint32 `db:"stream"`
	Observe   string `db:"observe"`
	StartTime int64  `db:"stime"`
	EndTime   int64  `db:"etime"`
	Proto     string `db:"proto"`
	SrcAddr   string `db:"saddr"`
	DstAddr   string `db:"daddr"`
	SrcPort   uint16 `db:"sport"`
	DstPort   uint16 `db:"dport"`
	SrcBytes  uint64 `db:"sbytes"`
	DstBytes  uint64 `db:"dbytes"`
	NDPIAppID string `db:"ndpi_appid"`
}

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	dbPath    string
	retention int
}

// New requires exactly one --output path naming the cache database
// file, and accepts "retention" (days to keep, 0 disables purging).
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	if len(id.Output) != 1 {
		return nil, fmt.Errorf("cache stage requires exactly one --output path (the cache database), got %d", len(id.Output))
	}
	retention := 0
	if v, ok := options["retention"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("option \"retention\": %w", err)
		}
		retention = n
	}
	id.DeleteFiles = true
	return &Stage{id: id, dbPath: id.Output[0], retention: retention}, nil
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

	db, err := sqlx.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("open cache database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(cacheTableDDL); err != nil {
		return fmt.Errorf("initialize cache schema: %w", err)
	}

	if len(records) == 0 {
		log.Infof("%s: no flows found", s.id.Command)
	} else {
		rows := make([]cacheRow, len(records))
		for i, r := range records {
			rows[i] = cacheRow{
				ID: r.ID.String(), Stream: r.Stream, Observe: r.Observe,
				StartTime: r.StartTime, EndTime: r.EndTime, Proto: r.Proto,
				SrcAddr: r.SrcAddr, DstAddr: r.DstAddr, SrcPort: r.SrcPort, DstPort: r.DstPort,
				SrcBytes: r.SrcBytes, DstBytes: r.DstBytes, NDPIAppID: r.NDPIAppID,
			}
		}
		if _, err := db.NamedExec(
			`INSERT OR REPLACE INTO flow (id, stream, observe, stime, etime, proto, saddr, daddr, sport, dport, sbytes, dbytes, ndpi_appid)
			 VALUES (:id, :stream, :observe, :stime, :etime, :proto, :saddr, :daddr, :sport, :dport, :sbytes, :dbytes, :ndpi_appid)`,
			rows,
		); err != nil {
			return fmt.Errorf("insert flows: %w", err)
		}
		log.Infof("%s: %d flows merged", s.id.Command, len(rows))
	}

	if s.retention > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -s.retention).UnixMicro()
		if _, err := db.Exec(`DELETE FROM flow WHERE stime < ?`, cutoff); err != nil {
			return fmt.Errorf("purge old flows: %w", err)
		}
	}
	return nil
}
