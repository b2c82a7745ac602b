// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// ErrNoGeometry is returned when rasterizing a drawing with no strokes.
var ErrNoGeometry = errors.New("no stroke data available to render")

// maxCanvasSide bounds the canvas before any MaxSize fit. Larger viewports
// are scaled down while drawing.
const maxCanvasSide = 4096

type RasterOptions struct {
	// MaxSize fits the image into a MaxSize×MaxSize square. 0 keeps the
	// canvas size.
	MaxSize int
}

// Rasterize draws d in black on a white canvas sized to its viewport.
// Single-point strokes become dots of radius max(1, width).
func Rasterize(d Drawing, opts RasterOptions) (image.Image, error) {
	if d.Empty() {
		return nil, ErrNoGeometry
	}

	vw, vh := d.Viewport.Width, d.Viewport.Height
	scale := 1.0
	if side := math.Max(vw, vh); side > maxCanvasSide {
		scale = maxCanvasSide / side
	}
	w := canvasSide(vw * scale)
	h := canvasSide(vh * scale)

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	tx := func(p Point) (float64, float64) {
		// Scale before subtracting so extreme coordinates stay finite.
		return p.X*scale - d.Viewport.X*scale, p.Y*scale - d.Viewport.Y*scale
	}

	for _, s := range d.Strokes {
		width := float64(s.Width) * scale
		if len(s.Points) == 1 {
			x, y := tx(s.Points[0])
			dc.DrawCircle(x, y, math.Max(1, width))
			dc.Fill()
			continue
		}
		dc.NewSubPath()
		for i, p := range s.Points {
			x, y := tx(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.SetLineWidth(width)
		dc.Stroke()
	}

	img := dc.Image()
	if opts.MaxSize > 0 && (w > opts.MaxSize || h > opts.MaxSize) {
		img = imaging.Fit(img, opts.MaxSize, opts.MaxSize, imaging.Lanczos)
	}
	return img, nil
}

// canvasSide rounds a scaled viewport side up to whole pixels within
// [1, maxCanvasSide].
func canvasSide(v float64) int {
	return int(math.Min(maxCanvasSide, math.Max(1, math.Ceil(v))))
}

// RasterizePNG rasterizes d and encodes it as PNG.
func RasterizePNG(w io.Writer, d Drawing, opts RasterOptions) error {
	img, err := Rasterize(d, opts)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
