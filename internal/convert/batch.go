// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/convert-master/pkg/types"
)

// Status is the outcome of converting one file.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertFile runs one request, printing a status line to w. If the output
// already exists it skips conversion.
func ConvertFile(ctx context.Context, d *Dispatcher, req types.ConversionRequest, w io.Writer) Status {
	name := filepath.Base(req.InputPath)

	c, err := d.Resolve(req)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed
	}

	if _, err := os.Stat(req.OutputPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (%s already exists)\n", name, req.OutputPath)
		return StatusSkipped
	}

	res, err := c.Convert(ctx)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		return StatusFailed
	}

	if res.Pages > 0 {
		fmt.Fprintf(w, "converted: %s -> %s (%d pages)\n", name, res.OutputPath, res.Pages)
	} else {
		fmt.Fprintf(w, "converted: %s -> %s\n", name, res.OutputPath)
	}
	return StatusConverted
}

// ConvertBatch processes requests in order, printing per-file status to w
// and returning a summary. It continues after individual failures.
func ConvertBatch(ctx context.Context, d *Dispatcher, reqs []types.ConversionRequest, w io.Writer) BatchResult {
	var result BatchResult
	for _, req := range reqs {
		switch ConvertFile(ctx, d, req, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertPaths builds requests from input paths and delegates to
// ConvertBatch. Outputs go to outDir, or next to each input when outDir is
// empty, named after the input with the target extension.
func ConvertPaths(ctx context.Context, d *Dispatcher, paths []string, target, outDir string, itemsPerPage int, w io.Writer) BatchResult {
	reqs := make([]types.ConversionRequest, len(paths))
	for i, p := range paths {
		out := types.OutputPathFor(p, target)
		if outDir != "" {
			out = filepath.Join(outDir, filepath.Base(out))
		}
		reqs[i] = types.NewConversionRequest(types.FormatOf(p), target, p, out, itemsPerPage)
	}
	return ConvertBatch(ctx, d, reqs, w)
}
