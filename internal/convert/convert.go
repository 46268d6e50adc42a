// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert maps a (source, target) format pair to a converter and runs
// it. The pair table is fixed at build time; document and presentation pairs
// delegate to external tools, image pairs are re-encoded in process.
package convert

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/convert-master/internal/office"
	"github.com/pdiddy/convert-master/internal/presentation"
	"github.com/pdiddy/convert-master/pkg/types"
)

// Kind identifies a converter variant.
type Kind int

const (
	KindDocxToPDF Kind = iota + 1
	KindPDFToDocx
	KindImage
	KindPresentationToPDF
)

func (k Kind) String() string {
	switch k {
	case KindDocxToPDF:
		return "docx-to-pdf"
	case KindPDFToDocx:
		return "pdf-to-docx"
	case KindImage:
		return "image"
	case KindPresentationToPDF:
		return "presentation-to-pdf"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// table is the single source of truth for supported conversions.
var table = map[types.Pair]Kind{
	{Source: "docx", Target: "pdf"}: KindDocxToPDF,
	{Source: "pdf", Target: "docx"}: KindPDFToDocx,
	{Source: "jpg", Target: "png"}:  KindImage,
	{Source: "png", Target: "jpg"}:  KindImage,
	{Source: "tiff", Target: "jpg"}: KindImage,
	{Source: "jpg", Target: "tiff"}: KindImage,
	{Source: "png", Target: "tiff"}: KindImage,
	{Source: "tiff", Target: "png"}: KindImage,
	{Source: "pptx", Target: "pdf"}: KindPresentationToPDF,
	{Source: "ppt", Target: "pdf"}:  KindPresentationToPDF,
}

// Result describes a finished conversion.
type Result struct {
	// OutputPath is the file that was written.
	OutputPath string
	// Pages is the page count of a PDF output, 0 for other formats.
	Pages int
}

// Converter is one conversion routine bound to a request.
type Converter interface {
	Kind() Kind
	Convert(ctx context.Context) (Result, error)
}

// Dispatcher resolves format pairs to converters. It holds no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	office      office.Runtime
	presenters  presentation.Factory
	composition bool
	automation  *semaphore.Weighted
	jpegQuality int
	inspect     func(path string) (int, error)
	timeout     time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOffice sets the office runtime used by the document variants.
func WithOffice(rt office.Runtime) Option {
	return func(d *Dispatcher) { d.office = rt }
}

// WithPresenters sets the presentation factory and whether it honours
// several slides per page.
func WithPresenters(f presentation.Factory, composition bool) Option {
	return func(d *Dispatcher) {
		d.presenters = f
		d.composition = composition
	}
}

// WithJPEGQuality sets the quality for jpg outputs.
func WithJPEGQuality(q int) Option {
	return func(d *Dispatcher) { d.jpegQuality = q }
}

// WithTimeout bounds each conversion. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithPDFInspector replaces the PDF validation step.
func WithPDFInspector(fn func(path string) (int, error)) Option {
	return func(d *Dispatcher) { d.inspect = fn }
}

// NewDispatcher creates a dispatcher. Without WithOffice the document pairs
// still resolve but fail at conversion time.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		automation:  semaphore.NewWeighted(1),
		jpegQuality: types.DefaultJPEGQuality,
		inspect:     InspectPDF,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Lookup consults the table for a pair. It performs no I/O.
func (d *Dispatcher) Lookup(source, target string) (Kind, error) {
	pair := types.Pair{Source: types.NormalizeFormat(source), Target: types.NormalizeFormat(target)}
	kind, ok := table[pair]
	if !ok {
		return 0, &UnsupportedFormatError{Source: pair.Source, Target: pair.Target}
	}
	return kind, nil
}

// Resolve returns the converter for req's pair bound to req's paths.
func (d *Dispatcher) Resolve(req types.ConversionRequest) (Converter, error) {
	kind, err := d.Lookup(req.Source, req.Target)
	if err != nil {
		return nil, err
	}
	req = types.NewConversionRequest(req.Source, req.Target, req.InputPath, req.OutputPath, req.ItemsPerPage)

	var c Converter
	switch kind {
	case KindDocxToPDF:
		c = &documentConverter{kind: kind, req: req, runtime: d.office, target: office.TargetPDF, inspect: d.inspect}
	case KindPDFToDocx:
		c = &documentConverter{kind: kind, req: req, runtime: d.office, target: office.TargetDocx}
	case KindImage:
		c = &imageConverter{req: req, quality: d.jpegQuality}
	case KindPresentationToPDF:
		c = &presentationConverter{req: req, factory: d.presenters, automation: d.automation, inspect: d.inspect}
	default:
		return nil, fmt.Errorf("no converter for kind %s", kind)
	}
	if d.timeout > 0 {
		c = &timedConverter{Converter: c, timeout: d.timeout}
	}
	return c, nil
}

// timedConverter bounds a conversion with a deadline.
type timedConverter struct {
	Converter
	timeout time.Duration
}

func (t *timedConverter) Convert(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Converter.Convert(ctx)
}

// NeedsItemsPerPage reports whether a conversion of this pair takes the
// slides-per-page parameter on this platform.
func (d *Dispatcher) NeedsItemsPerPage(source, target string) bool {
	kind, err := d.Lookup(source, target)
	return err == nil && kind == KindPresentationToPDF && d.composition
}

// Pairs returns every supported pair sorted by source then target.
func (d *Dispatcher) Pairs() []types.Pair {
	pairs := make([]types.Pair, 0, len(table))
	for p := range table {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Target < pairs[j].Target
	})
	return pairs
}

// Targets returns the distinct target formats, sorted.
func (d *Dispatcher) Targets() []string {
	seen := make(map[string]bool)
	var targets []string
	for p := range table {
		if !seen[p.Target] {
			seen[p.Target] = true
			targets = append(targets, p.Target)
		}
	}
	sort.Strings(targets)
	return targets
}
