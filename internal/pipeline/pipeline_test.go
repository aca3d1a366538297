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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions("retention=30;percent=5")
	require.NoError(t, err)
	assert.Equal(t, "30", opts["retention"])
	assert.Equal(t, "5", opts["percent"])

	empty, err := ParseOptions("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseOptions("bad-option")
	assert.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	for _, valid := range []string{"once", "second", "minute", "hour", "day"} {
		_, err := ParseInterval(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseInterval("fortnight")
	assert.Error(t, err)
}

func TestScanSkipsDotfilesAndWrongExtension(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.parquet"), "a")
	mustWrite(t, filepath.Join(dir, ".b.parquet"), "b")
	mustWrite(t, filepath.Join(dir, "c.txt"), "c")

	result, err := scan(dir, ".parquet")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.parquet"}, result.files)
	assert.False(t, result.more)
}

func TestScanRespectsYafLock(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "flow1.yaf"), "x")
	mustWrite(t, filepath.Join(dir, "flow2.yaf"), "x")
	mustWrite(t, filepath.Join(dir, "flow2.yaf.lock"), "")

	result, err := scan(dir, ".yaf")
	require.NoError(t, err)
	assert.Equal(t, []string{"flow1.yaf"}, result.files)
}

func TestScanCapsAtMaxBatch(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < MaxBatch+10; i++ {
		mustWrite(t, filepath.Join(dir, nthName(i)), "x")
	}

	result, err := scan(dir, ".parquet")
	require.NoError(t, err)
	assert.Len(t, result.files, MaxBatch)
	assert.True(t, result.more)
}

func TestAtomicWriteFileIsVisibleOnlyAfterRename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, AtomicWriteFile(dir, "out.parquet", []byte("payload")))

	data, err := os.ReadFile(filepath.Join(dir, "out.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func nthName(i int) string {
	return "file" + string(rune('a'+i%26)) + string(rune('0'+i%10)) + ".parquet"
}
