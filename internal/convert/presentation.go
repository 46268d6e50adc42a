// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/convert-master/internal/presentation"
	"github.com/pdiddy/convert-master/pkg/types"
)

// presentationConverter exports a deck to PDF through the platform
// presenter. The automation application is a single OS-level resource, so
// conversions across all conversations hold one shared semaphore.
type presentationConverter struct {
	req        types.ConversionRequest
	factory    presentation.Factory
	automation *semaphore.Weighted
	inspect    func(path string) (int, error)
}

func (c *presentationConverter) Kind() Kind { return KindPresentationToPDF }

func (c *presentationConverter) Convert(ctx context.Context) (Result, error) {
	if c.factory == nil {
		return Result{}, &ConversionError{Pair: c.req.Pair, Err: errors.New("no presentation exporter configured")}
	}

	if err := c.automation.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer c.automation.Release(1)

	if err := c.export(ctx); err != nil {
		os.Remove(c.req.OutputPath)
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

func (c *presentationConverter) export(ctx context.Context) (err error) {
	p, err := c.factory()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := p.Open(ctx, c.req.InputPath); err != nil {
		return err
	}
	if c.req.ItemsPerPage > 1 {
		if err := p.ComposeSlides(ctx, c.req.ItemsPerPage); err != nil {
			return err
		}
	}
	return p.Export(ctx, c.req.OutputPath)
}
