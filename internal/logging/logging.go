// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/convert-master/pkg/types"
)

// Init sets the global level and output format. Unknown levels fall back to
// info; format "console" selects the human-readable writer.
func Init(cfg types.LogConfig) {
	initTo(os.Stderr, cfg)
}

func initTo(w io.Writer, cfg types.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	output := w
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}
