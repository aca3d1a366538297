/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package pipeline

// Exit codes follow the BSD sysexits.h convention, matching the
// original's use of the Rust "exitcode" crate. No Go sysexits library
// appears anywhere in the example pack, so these are hand-rolled
// constants rather than an imported dependency.
const (
	ExitOK     = 0
	ExitConfig = 78 // EX_CONFIG: bad paths, unknown interval, missing required option.
	ExitIOErr  = 74 // EX_IOERR: process() failure, downstream write/move failure.
)
