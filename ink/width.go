// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import "math"

// DefaultWidth is used when a stroke carries no usable width.
const DefaultWidth = 2

// WidthKeys are the stroke fields that may hold a width, in priority order.
var WidthKeys = []string{"width", "stroke_width", "strokeWidth", "lineWidth", "size"}

// ResolveWidth returns the rendering width of one raw stroke.
//
// The first key in WidthKeys whose value coerces to a finite number wins,
// rounded half up and clamped to at least 1. A present value that does not
// coerce does not stop the search.
func ResolveWidth(raw map[string]any) int {
	for _, key := range WidthKeys {
		v, ok := field(raw, key)
		if !ok {
			continue
		}
		f, ok := coerceNumber(v)
		if !ok {
			continue
		}
		return clampWidth(math.Floor(f + 0.5))
	}
	return DefaultWidth
}

func clampWidth(f float64) int {
	if f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
