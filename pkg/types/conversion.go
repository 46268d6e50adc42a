// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for convert-master: the
// configuration sections and the conversion request passed from the
// conversation flow to the dispatcher.
package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Pair is an ordered (source, target) format tuple identifying one
// transformation. Both sides are normalised format identifiers.
type Pair struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// String returns "source->target".
func (p Pair) String() string {
	return p.Source + "->" + p.Target
}

// ConversionRequest describes one conversion attempt. It is built once per
// attempt and not modified afterwards.
type ConversionRequest struct {
	Pair

	// InputPath is the local file to read.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is where the converted file is written.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// ItemsPerPage is the number of presentation slides per output page.
	// Only the presentation variant reads it; values below 1 mean 1.
	ItemsPerPage int `json:"items_per_page" yaml:"items_per_page"`
}

// NewConversionRequest normalises the formats and fills ItemsPerPage.
func NewConversionRequest(source, target, input, output string, itemsPerPage int) ConversionRequest {
	if itemsPerPage < 1 {
		itemsPerPage = 1
	}
	return ConversionRequest{
		Pair:         Pair{Source: NormalizeFormat(source), Target: NormalizeFormat(target)},
		InputPath:    input,
		OutputPath:   output,
		ItemsPerPage: itemsPerPage,
	}
}

// formatAliases maps alternative spellings onto the identifiers used as keys.
var formatAliases = map[string]string{
	"jpeg": "jpg",
	"tif":  "tiff",
}

// NormalizeFormat lower-cases a format identifier, strips a leading dot and
// resolves aliases ("JPEG" and ".jpeg" both become "jpg").
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	if alias, ok := formatAliases[f]; ok {
		return alias
	}
	return f
}

// FormatOf returns the normalised format of a path, taken from its extension.
func FormatOf(path string) string {
	return NormalizeFormat(filepath.Ext(path))
}

// OutputPathFor returns input with its extension replaced by target.
func OutputPathFor(input, target string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s.%s", base, NormalizeFormat(target))
}
