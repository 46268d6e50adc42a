// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build windows

package presentation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/pdiddy/convert-master/internal/office"
)

const composition = true

// PowerPoint enumeration values used by ExportAsFixedFormat.
const (
	ppFixedFormatTypePDF        = 2
	ppFixedFormatIntentPrint    = 2
	msoFalse                    = 0
	msoTrue                     = -1
	ppPrintHandoutVerticalFirst = 1
)

// ppPrintOutput values keyed by slides per page.
var outputTypes = map[int]int{
	1: 1, // ppPrintOutputSlides
	2: 2, // ppPrintOutputTwoSlideHandouts
	3: 3, // ppPrintOutputThreeSlideHandouts
	4: 8, // ppPrintOutputFourSlideHandouts
	6: 4, // ppPrintOutputSixSlideHandouts
	9: 9, // ppPrintOutputNineSlideHandouts
}

// Default returns the PowerPoint automation factory. The office runtime is
// not needed on Windows.
func Default(office.Runtime) Factory {
	return func() (Presenter, error) {
		return &powerPoint{perPage: 1}, nil
	}
}

// powerPoint drives PowerPoint.Application over COM. COM objects are bound to
// the thread that created them, so the goroutine is locked to its OS thread
// from Open until Close.
type powerPoint struct {
	app          *ole.IDispatch
	presentation *ole.IDispatch
	perPage      int
	locked       bool
}

func (p *powerPoint) Open(_ context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	runtime.LockOSThread()
	p.locked = true
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE: already initialised on this thread.
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			return fmt.Errorf("initialising COM: %w", err)
		}
	}

	unknown, err := oleutil.CreateObject("PowerPoint.Application")
	if err != nil {
		return fmt.Errorf("starting PowerPoint: %w", err)
	}
	defer unknown.Release()

	p.app, err = unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("querying PowerPoint dispatch: %w", err)
	}

	presentations, err := oleutil.GetProperty(p.app, "Presentations")
	if err != nil {
		return fmt.Errorf("reading Presentations: %w", err)
	}
	defer presentations.Clear()

	// Open(FileName, ReadOnly, Untitled, WithWindow)
	opened, err := oleutil.CallMethod(presentations.ToIDispatch(), "Open", abs, msoTrue, msoFalse, msoFalse)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	p.presentation = opened.ToIDispatch()
	return nil
}

func (p *powerPoint) ComposeSlides(_ context.Context, perPage int) error {
	layout, err := HandoutLayout(perPage)
	if err != nil {
		return err
	}
	p.perPage = layout
	return nil
}

func (p *powerPoint) Export(_ context.Context, output string) error {
	if p.presentation == nil {
		return errors.New("no presentation open")
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", output, err)
	}

	// ExportAsFixedFormat(Path, FixedFormatType, Intent, FrameSlides, HandoutOrder, OutputType)
	_, err = oleutil.CallMethod(p.presentation, "ExportAsFixedFormat",
		abs, ppFixedFormatTypePDF, ppFixedFormatIntentPrint, msoFalse,
		ppPrintHandoutVerticalFirst, outputTypes[p.perPage])
	if err != nil {
		return fmt.Errorf("exporting PDF: %w", err)
	}
	return nil
}

func (p *powerPoint) Close() error {
	var errs []error
	if p.presentation != nil {
		if _, err := oleutil.CallMethod(p.presentation, "Close"); err != nil {
			errs = append(errs, fmt.Errorf("closing presentation: %w", err))
		}
		p.presentation.Release()
		p.presentation = nil
	}
	if p.app != nil {
		if _, err := oleutil.CallMethod(p.app, "Quit"); err != nil {
			errs = append(errs, fmt.Errorf("quitting PowerPoint: %w", err))
		}
		p.app.Release()
		p.app = nil
	}
	if p.locked {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		p.locked = false
	}
	return errors.Join(errs...)
}
