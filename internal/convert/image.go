// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/pdiddy/convert-master/pkg/types"
)

// imageConverter re-encodes between jpg, png and tiff.
type imageConverter struct {
	req     types.ConversionRequest
	quality int
}

func (c *imageConverter) Kind() Kind { return KindImage }

func (c *imageConverter) Convert(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	img, err := decodeImage(c.req.InputPath)
	if err != nil {
		return Result{}, &ConversionError{Pair: c.req.Pair, Err: err}
	}

	img = toRGB(img)

	err = writeAtomic(c.req.OutputPath, func(w io.Writer) error {
		return encodeImage(w, img, c.req.Target, c.quality)
	})
	if err != nil {
		return Result{}, &ConversionError{Pair: c.req.Pair, Err: err}
	}
	return Result{OutputPath: c.req.OutputPath}, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func encodeImage(w io.Writer, img image.Image, format string, quality int) error {
	switch format {
	case "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case "png":
		return png.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("no encoder for %q", format)
}

// isRGB reports whether img is already opaque RGB.
func isRGB(img image.Image) bool {
	switch m := img.(type) {
	case *image.YCbCr:
		return true
	case *image.RGBA:
		return m.Opaque()
	case *image.NRGBA:
		return m.Opaque()
	}
	return false
}

// toRGB normalises img to opaque RGB. Every image save goes through it.
// Transparent pixels are flattened onto white.
func toRGB(img image.Image) image.Image {
	if isRGB(img) {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}
