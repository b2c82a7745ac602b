// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"fmt"
	"math"
	"strings"
)

// Padding is added around the bounding box on every side.
const Padding = 20

// FallbackViewport is the viewport of a drawing with nothing to draw.
var FallbackViewport = Rect{X: 0, Y: 0, Width: 1, Height: 1}

// Op is a path command kind.
type Op int

const (
	MoveTo Op = iota
	LineTo
)

func (o Op) String() string {
	switch o {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func (o Op) MarshalText() ([]byte, error) {
	if o != MoveTo && o != LineTo {
		return nil, fmt.Errorf("ink: unknown path op %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Op) UnmarshalText(text []byte) error {
	switch string(text) {
	case "M":
		*o = MoveTo
	case "L":
		*o = LineTo
	default:
		return fmt.Errorf("ink: unknown path op %q", text)
	}
	return nil
}

type Command struct {
	Op Op      `json:"op"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Path is the command list for one stroke.
type Path struct {
	Commands []Command `json:"commands"`
	Width    int       `json:"width"`
}

// D formats the commands as SVG path data, e.g. "M0 0 L10 10".
func (p Path) D() string {
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Op.String())
		b.WriteString(formatNumber(c.X))
		b.WriteByte(' ')
		b.WriteString(formatNumber(c.Y))
	}
	return b.String()
}

// Drawing is the renderable form of a capture batch. Strokes and Paths are
// index-aligned. Drawings returned from a Cache are shared and must not be
// modified.
type Drawing struct {
	Viewport Rect               `json:"viewport"`
	Bounds   *BoundingBox       `json:"bounds,omitempty"`
	Strokes  []NormalizedStroke `json:"strokes"`
	Paths    []Path             `json:"paths"`
}

// Empty reports whether the drawing has no strokes.
func (d Drawing) Empty() bool {
	return len(d.Strokes) == 0
}

// Viewport computes the padded viewport for a bounding box, or
// FallbackViewport when the box is absent.
func Viewport(box BoundingBox, ok bool) Rect {
	if !ok {
		return FallbackViewport
	}
	return Rect{
		X:      box.MinX - Padding,
		Y:      box.MinY - Padding,
		Width:  extent(box.MinX, box.MaxX),
		Height: extent(box.MinY, box.MaxY),
	}
}

// extent is the padded span from lo to hi, at least 1 and never beyond
// math.MaxFloat64.
func extent(lo, hi float64) float64 {
	return math.Min(math.MaxFloat64, max(1, hi-lo+2*Padding))
}

// PathFor emits a move to the first point and a line to each later one.
// A single-point stroke is a lone move.
func PathFor(s NormalizedStroke) Path {
	cmds := make([]Command, len(s.Points))
	for i, p := range s.Points {
		op := LineTo
		if i == 0 {
			op = MoveTo
		}
		cmds[i] = Command{Op: op, X: p.X, Y: p.Y}
	}
	return Path{Commands: cmds, Width: s.Width}
}

// Render builds the drawing for already-collected strokes and their bounds.
func Render(strokes []NormalizedStroke, box BoundingBox, ok bool) Drawing {
	d := Drawing{
		Viewport: Viewport(box, ok),
		Strokes:  strokes,
		Paths:    make([]Path, 0, len(strokes)),
	}
	if d.Strokes == nil {
		d.Strokes = []NormalizedStroke{}
	}
	if ok {
		b := box
		d.Bounds = &b
	}
	for _, s := range strokes {
		d.Paths = append(d.Paths, PathFor(s))
	}
	return d
}

// Normalize runs the whole pipeline over a capture batch.
func Normalize(captures []Capture) Drawing {
	strokes := Collect(captures)
	box, ok := Bounds(strokes)
	return Render(strokes, box, ok)
}
