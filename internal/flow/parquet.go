/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package flow

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pq "github.com/parquet-go/parquet-go"
)

// ReadBytes decodes every Record from Parquet-encoded bytes. This is the
// Go substitute for the embedded engine's "read Parquet with projection &
// filter" capability when no filter is needed — callers that need a
// partition filter scan the returned slice instead of pushing the
// predicate into the reader, since parquet-go does not expose DuckDB-style
// SQL pushdown (see SPEC_FULL.md §9 "Embedded engine substitution").
func ReadBytes(data []byte) ([]Record, error) {
	file, err := pq.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := pq.NewGenericReader[Record](file)
	defer reader.Close()

	rows := make([]Record, file.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	return rows[:n], nil
}

// WriteBytes encodes records into Parquet bytes, zstd-compressed and
// sorted by partition key so that partition-scoped scans during scoring
// and rule application can rely on locality. Grounded on
// pkg/archive/parquet/writer.go's writeParquetBytes.
func WriteBytes(records []Record) ([]byte, error) {
	var buf bytes.Buffer

	writer := pq.NewGenericWriter[Record](&buf,
		pq.Compression(&pq.Zstd),
		pq.SortingWriterConfig(pq.SortingColumns(
			pq.Ascending("observe"),
			pq.Ascending("dvlan"),
			pq.Ascending("proto"),
		)),
	)

	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadFiles decodes and concatenates the records of every path in batch,
// in the order given. Every gnat-* stage's Process starts here.
func ReadFiles(paths []string) ([]Record, error) {
	var all []Record
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		records, err := ReadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", path, err)
		}
		all = append(all, records...)
	}
	return all, nil
}

// DetectFileVersion decodes path and runs DetectVersion over its records,
// the version-discovery strategy every Parquet-consuming stage's
// DetectVersion method delegates to.
func DetectFileVersion(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", path, err)
	}
	records, err := ReadBytes(data)
	if err != nil {
		return 0, fmt.Errorf("decode %q: %w", path, err)
	}
	return DetectVersion(records)
}

// DetectVersion inspects the Version field of the first decoded record
// and validates it against SupportedVersions. An empty slice is not an
// error here; the caller decides what an empty batch means.
func DetectVersion(records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	version := int(records[0].Version)
	for _, v := range SupportedVersions {
		if v == version {
			return version, nil
		}
	}
	return 0, fmt.Errorf("unsupported record schema version %d: want one of %v", version, SupportedVersions)
}

// Partitions groups records by their (observe, dvlan, proto) key.
func Partitions(records []Record) map[PartitionKey][]Record {
	out := make(map[PartitionKey][]Record)
	for _, r := range records {
		out[r.Partition()] = append(out[r.Partition()], r)
	}
	return out
}

// TrainablePartitions groups records the same way as Partitions but
// restricts membership to proto ∈ {tcp, udp}, matching HBOS train's
// partition enumeration rule (spec §4.4 step 1).
func TrainablePartitions(records []Record) map[PartitionKey][]Record {
	out := make(map[PartitionKey][]Record)
	for _, r := range records {
		if r.Proto != "tcp" && r.Proto != "udp" {
			continue
		}
		out[r.Partition()] = append(out[r.Partition()], r)
	}
	return out
}
