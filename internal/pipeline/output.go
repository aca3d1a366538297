/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// OutputFilename builds the "gnat-<command>-<rfc3339>.parquet" name the
// original's stages write, with colons replaced so the name survives
// filesystems that reject them. Grounded on the tmp_filename/new_filename
// patterns shared across original_source/gnat/src/pipeline/*.rs.
func OutputFilename(command string, now time.Time) string {
	safe := strings.ReplaceAll(now.UTC().Format(time.RFC3339), ":", "-")
	return fmt.Sprintf("gnat-%s-%s.parquet", command, safe)
}

// WriteOutputs atomically writes data under the same generated name to
// every directory in an identity's output list.
func WriteOutputs(id Identity, data []byte) error {
	name := OutputFilename(id.Command, time.Now())
	for _, dir := range id.Output {
		if err := AtomicWriteFile(dir, name, data); err != nil {
			return fmt.Errorf("write output to %q: %w", dir, err)
		}
	}
	return nil
}
