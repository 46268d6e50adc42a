// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/convert-master/internal/office"
	"github.com/pdiddy/convert-master/pkg/types"
)

// errNoOffice is returned when a document pair runs without an office runtime.
var errNoOffice = errors.New("no office runtime available for document conversion")

// documentConverter converts between docx and pdf through the office suite.
type documentConverter struct {
	kind    Kind
	req     types.ConversionRequest
	runtime office.Runtime
	target  office.Target
	inspect func(path string) (int, error)
}

func (c *documentConverter) Kind() Kind { return c.kind }

func (c *documentConverter) Convert(ctx context.Context) (Result, error) {
	if c.runtime == nil {
		return Result{}, &ConversionError{Pair: c.req.Pair, Err: errNoOffice}
	}
	if err := office.ConvertFile(ctx, c.runtime, c.req.InputPath, c.req.OutputPath, c.target); err != nil {
		return Result{}, &ConversionError{Pair: c.req.Pair, Err: err}
	}

	res := Result{OutputPath: c.req.OutputPath}
	if c.inspect != nil {
		pages, err := c.inspect(c.req.OutputPath)
		if err != nil {
			os.Remove(c.req.OutputPath)
			return Result{}, &ConversionError{Pair: c.req.Pair, Err: fmt.Errorf("checking output: %w", err)}
		}
		res.Pages = pages
	}
	return res, nil
}
