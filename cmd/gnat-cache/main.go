/*
 * Galileo Network Analytics (GNA) Toolkit
 *
 * Copyright 2024-2025 Fidelis Farm & Technologies, LLC
 * All Rights Reserved.
 * See license information in LICENSE.
 */

package main

import (
	"os"

	"github.com/fidelis-farm/gnat-toolkit/internal/config"
	"github.com/fidelis-farm/gnat-toolkit/internal/pipeline"
	"github.com/fidelis-farm/gnat-toolkit/internal/stage/cache"
	"github.com/fidelis-farm/gnat-toolkit/pkg/log"
)

func main() {
	flags := config.ParseStageFlags(".parquet")
	if err := config.LoadEnvironment(flags.EnvFile); err != nil {
		log.Errorf("gnat-cache: %s", err)
		os.Exit(pipeline.ExitConfig)
	}

	id, err := flags.Identity("gnat-cache", true)
	if err != nil {
		log.Errorf("gnat-cache: %s", err)
		os.Exit(pipeline.ExitConfig)
	}

	options, err := flags.ParseOptions()
	if err != nil {
		log.Errorf("gnat-cache: %s", err)
		os.Exit(pipeline.ExitConfig)
	}

	stage, err := cache.New(id, options)
	if err != nil {
		log.Errorf("gnat-cache: %s", err)
		os.Exit(pipeline.ExitConfig)
	}

	os.Exit(pipeline.Run(stage))
}
