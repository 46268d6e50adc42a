// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/convert-master/internal/convert"
	"github.com/pdiddy/convert-master/internal/office"
	"github.com/pdiddy/convert-master/internal/presentation"
	"github.com/pdiddy/convert-master/pkg/types"
)

// newDispatcher wires the converters for c and returns the dispatcher with
// the name of the office runtime in use ("none" if document conversions are
// unavailable).
func newDispatcher(c *types.Config) (*convert.Dispatcher, string) {
	opts := []convert.Option{
		convert.WithJPEGQuality(c.Conversion.JPEGQuality),
		convert.WithTimeout(c.Conversion.Timeout),
	}

	runtimeName := "none"
	rt, err := office.DetectRuntime(c.Conversion.OfficeBinary, c.Conversion.OfficeImage)
	if err != nil {
		log.Warn().Err(err).Msg("document conversions unavailable")
	} else {
		runtimeName = rt.Name()
		opts = append(opts, convert.WithOffice(rt))
		log.Info().Str("runtime", runtimeName).Msg("office runtime detected")
	}

	opts = append(opts, convert.WithPresenters(presentation.Default(rt), presentation.SupportsComposition()))
	return convert.NewDispatcher(opts...), runtimeName
}
