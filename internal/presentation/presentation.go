// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package presentation exports slide decks (pptx, ppt) to PDF through a
// platform automation capability. On Windows the capability drives
// PowerPoint, which can also place several slides on one page. Elsewhere it
// exports through the office suite one slide per page.
package presentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/convert-master/internal/office"
)

// ErrCompositionUnsupported is returned by ComposeSlides when the platform
// cannot place more than one slide on a page.
var ErrCompositionUnsupported = errors.New("placing several slides per page is not supported on this platform")

// Presenter opens a deck, optionally composes several slides per page, and
// exports the result as PDF. A Presenter handles one deck and is not safe
// for concurrent use; callers must Close it.
type Presenter interface {
	Open(ctx context.Context, path string) error
	ComposeSlides(ctx context.Context, perPage int) error
	Export(ctx context.Context, output string) error
	Close() error
}

// Factory creates a Presenter for one conversion.
type Factory func() (Presenter, error)

// SupportsComposition reports whether the platform presenter honours
// ComposeSlides with values above 1.
func SupportsComposition() bool {
	return composition
}

// handoutLayouts lists the slides-per-page layouts the automation offers.
var handoutLayouts = []int{1, 2, 3, 4, 6, 9}

// MaxPerPage is the largest slides-per-page value a layout can hold.
const MaxPerPage = 9

// HandoutLayout returns the smallest layout holding at least perPage slides.
func HandoutLayout(perPage int) (int, error) {
	if perPage < 1 {
		return 0, fmt.Errorf("slides per page must be at least 1, got %d", perPage)
	}
	for _, n := range handoutLayouts {
		if n >= perPage {
			return n, nil
		}
	}
	return 0, fmt.Errorf("slides per page must be at most %d, got %d", MaxPerPage, perPage)
}

// OfficePresenter exports decks through the office suite. It places one
// slide per page.
type OfficePresenter struct {
	runtime office.Runtime
	path    string
}

// NewOfficePresenter returns a presenter backed by rt.
func NewOfficePresenter(rt office.Runtime) *OfficePresenter {
	return &OfficePresenter{runtime: rt}
}

// OfficeFactory returns a Factory producing OfficePresenters.
func OfficeFactory(rt office.Runtime) Factory {
	return func() (Presenter, error) {
		if rt == nil {
			return nil, errors.New("no office runtime configured for presentation export")
		}
		return NewOfficePresenter(rt), nil
	}
}

func (p *OfficePresenter) Open(_ context.Context, path string) error {
	p.path = path
	return nil
}

func (p *OfficePresenter) ComposeSlides(_ context.Context, perPage int) error {
	if perPage <= 1 {
		return nil
	}
	return ErrCompositionUnsupported
}

func (p *OfficePresenter) Export(ctx context.Context, output string) error {
	if p.path == "" {
		return errors.New("no presentation open")
	}
	return office.ConvertFile(ctx, p.runtime, p.path, output, office.TargetPDF)
}

func (p *OfficePresenter) Close() error {
	p.path = ""
	return nil
}
