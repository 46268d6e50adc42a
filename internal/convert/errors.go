// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"github.com/pdiddy/convert-master/pkg/types"
)

// UnsupportedFormatError reports a pair absent from the table.
type UnsupportedFormatError struct {
	Source string
	Target string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported conversion format: %s to %s", e.Source, e.Target)
}

// ConversionError wraps a failure of a converter or the tool behind it.
type ConversionError struct {
	Pair types.Pair
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s: %v", e.Pair, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
