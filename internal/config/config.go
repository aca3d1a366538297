/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

// Package config implements the ambient bootstrap every gnat-* command
// shares: .env loading and the --input/--output/--pass/--interval/
// --options flag contract fixed by spec.md section 6 "Stage CLI".
// Grounded on original_source/gnat/src/pipeline/*.rs's shared use of
// dotenvy at process startup, mirrored here with joho/godotenv.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
)

// LoadEnvironment loads a .env file into the process environment. A
// missing file at the default path is not an error; every other
// failure (malformed file, explicit path that doesn't exist) is.
func LoadEnvironment(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load environment file %q: %w", path, err)
	}
	return nil
}

// StageFlags holds one stage's parsed command-line flags, prior to
// validation into a pipeline.Identity.
type StageFlags struct {
	Input     string
	Output    string
	Pass      string
	Extension string
	Interval  string
	Options   string
	StreamID  uint
	EnvFile   string
}

// ParseStageFlags registers and parses the flag set common to every
// gnat-* command. defaultExtension is the file suffix a stage scans
// for when --extension is not given (".yaf" for import, ".parquet"
// for everything downstream of it).
func ParseStageFlags(defaultExtension string) StageFlags {
	var f StageFlags
	flag.StringVar(&f.Input, "input", "", "input directory to scan (required)")
	flag.StringVar(&f.Output, "output", "", "comma-separated output directories (required)")
	flag.StringVar(&f.Pass, "pass", "", "directory to move consumed input files into (optional; if omitted, consumed input files are deleted)")
	flag.StringVar(&f.Extension, "extension", defaultExtension, "input file extension filter")
	flag.StringVar(&f.Interval, "interval", string(pipeline.IntervalOnce), "dispatch interval: once, second, minute, hour, day")
	flag.StringVar(&f.Options, "options", "", "stage options as k1=v1;k2=v2;...")
	flag.UintVar(&f.StreamID, "stream", 0, "stream id stamped on stages that originate records")
	flag.StringVar(&f.EnvFile, "env", "", "path to a .env file (defaults to ./.env if present)")
	flag.Parse()
	return f
}

// Identity validates the parsed flags and builds a pipeline.Identity,
// with deleteFiles controlling disposal when --pass is not given.
func (f StageFlags) Identity(command string, deleteFiles bool) (pipeline.Identity, error) {
	if f.Input == "" {
		return pipeline.Identity{}, fmt.Errorf("--input is required")
	}
	if f.Output == "" {
		return pipeline.Identity{}, fmt.Errorf("--output is required")
	}

	interval, err := pipeline.ParseInterval(f.Interval)
	if err != nil {
		return pipeline.Identity{}, err
	}

	var outputs []string
	for _, dir := range strings.Split(f.Output, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		outputs = append(outputs, dir)
	}
	if len(outputs) == 0 {
		return pipeline.Identity{}, fmt.Errorf("--output must name at least one directory")
	}

	return pipeline.Identity{
		Command:     command,
		Input:       f.Input,
		Output:      outputs,
		Pass:        f.Pass,
		Extension:   f.Extension,
		Interval:    interval,
		StreamID:    uint32(f.StreamID),
		DeleteFiles: deleteFiles,
	}, nil
}

// Options parses the --options string into a map, per
// pipeline.ParseOptions.
func (f StageFlags) ParseOptions() (map[string]string, error) {
	return pipeline.ParseOptions(f.Options)
}

// OptionOrDefault returns options[key], or def if the key is absent.
func OptionOrDefault(options map[string]string, key, def string) string {
	if v, ok := options[key]; ok {
		return v
	}
	return def
}

// RequireOption returns options[key] or a config error if it is absent
// or empty.
func RequireOption(options map[string]string, key string) (string, error) {
	v, ok := options[key]
	if !ok || v == "" {
		return "", fmt.Errorf("required option %q is missing", key)
	}
	return v, nil
}

// OptionInt parses options[key] as an int, or returns def if absent.
func OptionInt(options map[string]string, key string, def int) (int, error) {
	v, ok := options[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option %q must be an integer, got %q: %w", key, v, err)
	}
	return n, nil
}

// OptionBool parses options[key] as a bool, or returns def if absent.
func OptionBool(options map[string]string, key string, def bool) (bool, error) {
	v, ok := options[key]
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("option %q must be a bool, got %q: %w", key, v, err)
	}
	return b, nil
}
