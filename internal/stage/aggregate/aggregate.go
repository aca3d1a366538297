/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package aggregate implements the aggregate stage: roll a batch of
// scored flow records up into the per-minute metric tables of
// internal/model/table, and write the result as Parquet partitioned by
// year/month/day, the way original_source's COPY ... PARTITION_BY
// (year, month, day) does against its DuckDB cache. A background
// gocron job sweeps partitions older than the configured retention
// window. Grounded on original_source/gnat/src/pipeline/aggregate.rs.
package aggregate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-co-op/gocron/v2"
	pq "github.com/parquet-go/parquet-go"

	"github.com/fidelis-farm/gnat-toolkit/internal/flow"
	"github.com/fidelis-farm/gnat-toolkit/internal/model/table"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

const defaultRetentionDays = 30

// metricRow is the Parquet projection of table.MetricRecord plus the
// year/month/day columns original_source derives with DuckDB's
// year()/month()/day() and partitions its COPY by.
type metricRow struct {
	Stream  uint32  `parquet:"stream"`
	Bucket  int64   `parquet:"bucket,timestamp(microsecond)"`
	Observe string  `parquet:"observe"`
	Name    string  `parquet:"name"`
	Key     string  `parquet:"key"`
	Value   float64 `parquet:"value"`
	Year    int32   `parquet:"year"`
	Month   int32   `parquet:"month"`
	Day     int32   `parquet:"day"`
}

// Stage implements pipeline.Stage.
type Stage struct {
	id        pipeline.Identity
	retention int

	scheduler gocron.Scheduler
}

// New parses the "retention" option (days of partitions to keep,
// default 30) and starts the retention sweep job. Options other than
// retention are accepted and ignored, matching the permissive
// parse_options().entry(...).or_insert(...) pattern of the original.
func New(id pipeline.Identity, options map[string]string) (*Stage, error) {
	retention := defaultRetentionDays
	if v, ok := options["retention"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("option \"retention\": %w", err)
		}
		retention = n
	}

	id.DeleteFiles = true
	s := &Stage{id: id, retention: retention}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create retention scheduler: %w", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(s.sweepRetention),
	); err != nil {
		return nil, fmt.Errorf("schedule retention sweep: %w", err)
	}
	scheduler.Start()
	s.scheduler = scheduler

	return s, nil
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

	sink := &table.SliceSink{}
	if err := table.RunAll(records, sink); err != nil {
		return fmt.Errorf("roll up metrics: %w", err)
	}
	if len(sink.Records) == 0 {
		log.Infof("%s: no metric rows produced from batch of %d record(s)", s.id.Command, len(records))
		return nil
	}

	byDay := make(map[time.Time][]metricRow)
	for _, r := range sink.Records {
		day := time.Date(r.Bucket.Year(), r.Bucket.Month(), r.Bucket.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] = append(byDay[day], metricRow{
			Stream:  s.id.StreamID,
			Bucket:  r.Bucket.UnixMicro(),
			Observe: r.Observe,
			Name:    r.Name,
			Key:     r.Key,
			Value:   r.Value,
			Year:    int32(day.Year()),
			Month:   int32(day.Month()),
			Day:     int32(day.Day()),
		})
	}

	for day, rows := range byDay {
		data, err := encodeMetrics(rows)
		if err != nil {
			return fmt.Errorf("encode metrics for %s: %w", day.Format("2006-01-02"), err)
		}
		name := pipeline.OutputFilename(s.id.Command, time.Now())
		for _, dir := range s.id.Output {
			partDir := partitionDir(dir, day)
			if err := os.MkdirAll(partDir, 0o755); err != nil {
				return fmt.Errorf("create partition directory %q: %w", partDir, err)
			}
			if err := pipeline.AtomicWriteFile(partDir, name, data); err != nil {
				return fmt.Errorf("write partition %q: %w", partDir, err)
			}
		}
	}
	return nil
}

func encodeMetrics(rows []metricRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := pq.NewGenericWriter[metricRow](&buf, pq.Compression(&pq.Zstd))
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func partitionDir(root string, day time.Time) string {
	return filepath.Join(root,
		fmt.Sprintf("year=%04d", day.Year()),
		fmt.Sprintf("month=%02d", day.Month()),
		fmt.Sprintf("day=%02d", day.Day()),
	)
}

// sweepRetention removes day partitions older than the configured
// retention window from every output directory. Run on a daily
// schedule rather than per batch, since retention is a property of
// wall-clock time, not of any one file's arrival.
func (s *Stage) sweepRetention() {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention)
	for _, dir := range s.id.Output {
		years, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, y := range years {
			months, err := os.ReadDir(filepath.Join(dir, y.Name()))
			if err != nil {
				continue
			}
			for _, m := range months {
				base := filepath.Join(dir, y.Name(), m.Name())
				days, err := os.ReadDir(base)
				if err != nil {
					continue
				}
				for _, d := range days {
					day, err := parsePartitionDate(y.Name(), m.Name(), d.Name())
					if err != nil {
						continue
					}
					if day.Before(cutoff) {
						full := filepath.Join(base, d.Name())
						if err := os.RemoveAll(full); err != nil {
							log.Warnf("%s: retention sweep: remove %q: %s", s.id.Command, full, err)
							continue
						}
						log.Infof("%s: retention sweep removed %q", s.id.Command, full)
					}
				}
			}
		}
	}
}

func parsePartitionDate(year, month, day string) (time.Time, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(year, "year=%d", &y); err != nil {
		return time.Time{}, err
	}
	if _, err := fmt.Sscanf(month, "month=%d", &m); err != nil {
		return time.Time{}, err
	}
	if _, err := fmt.Sscanf(day, "day=%d", &d); err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}
