// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

// Collect normalizes every stroke of every capture, in capture order and
// then stroke order. That order is the z-order of the drawing.
//
// A payload without a "strokes" sequence contributes nothing. Strokes that
// are not mappings, or that yield no points, are dropped.
func Collect(captures []Capture) []NormalizedStroke {
	strokes := []NormalizedStroke{}
	for _, c := range captures {
		for _, raw := range payloadStrokes(c.Payload) {
			m, ok := asStrokeMap(raw)
			if !ok {
				continue
			}
			points := ExtractPoints(m)
			if len(points) == 0 {
				continue
			}
			strokes = append(strokes, NormalizedStroke{
				Points: points,
				Width:  ResolveWidth(m),
			})
		}
	}
	return strokes
}

func payloadStrokes(payload any) []any {
	v, ok := field(payload, "strokes")
	if !ok {
		return nil
	}
	seq, _ := sequence(v)
	return seq
}

func asStrokeMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if !isMapping(v) {
		return nil, false
	}
	// Typed maps (map[string]float64 and the like) are copied so the
	// extractors see a single shape.
	out := map[string]any{}
	for _, key := range append(append([]string{"x", "y"}, PointKeys...), WidthKeys...) {
		if val, ok := field(v, key); ok {
			out[key] = val
		}
	}
	return out, true
}
