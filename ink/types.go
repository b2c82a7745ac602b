// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"strconv"
	"strings"
)

// Point is one pen position in the producer's coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Capture is one persisted ink-capture event. Payload is the decoded JSON
// (or YAML) document; only its "strokes" field is read.
type Capture struct {
	Payload any `json:"payload"`
}

// NormalizedStroke always holds at least one point.
type NormalizedStroke struct {
	Points []Point `json:"points"`
	Width  int     `json:"width"`
}

type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Rect is a viewport rectangle: origin plus size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewBox formats r as an SVG viewBox attribute value.
func (r Rect) ViewBox() string {
	return strings.Join([]string{
		formatNumber(r.X),
		formatNumber(r.Y),
		formatNumber(r.Width),
		formatNumber(r.Height),
	}, " ")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
