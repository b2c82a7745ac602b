// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

// PointKeys are the stroke fields that may hold a point sequence, in
// priority order. The parallel "x"/"y" form is tried after all of them.
var PointKeys = []string{"points", "path", "segments"}

// ExtractPoints decodes the points of one raw stroke.
//
// The first key in PointKeys holding a sequence supplies the candidates;
// failing that, parallel "x" and "y" sequences are zipped up to the shorter
// length. Each candidate may be an [x, y] pair (extra members ignored) or an
// {x, y} mapping. Candidates with a missing or non-numeric coordinate are
// skipped. A stroke with no candidates yields an empty slice.
func ExtractPoints(raw map[string]any) []Point {
	candidates := candidatePoints(raw)
	points := make([]Point, 0, len(candidates))
	for _, c := range candidates {
		if p, ok := decodePoint(c); ok {
			points = append(points, p)
		}
	}
	return points
}

func candidatePoints(raw map[string]any) []any {
	for _, key := range PointKeys {
		v, ok := field(raw, key)
		if !ok {
			continue
		}
		if seq, ok := sequence(v); ok {
			return seq
		}
	}

	xv, okX := field(raw, "x")
	yv, okY := field(raw, "y")
	if !okX || !okY {
		return nil
	}
	xs, okX := sequence(xv)
	ys, okY := sequence(yv)
	if !okX || !okY {
		return nil
	}

	n := min(len(xs), len(ys))
	pairs := make([]any, n)
	for i := range n {
		pairs[i] = []any{xs[i], ys[i]}
	}
	return pairs
}

func decodePoint(v any) (Point, bool) {
	if pair, ok := sequence(v); ok {
		if len(pair) < 2 {
			return Point{}, false
		}
		x, okX := number(pair[0])
		y, okY := number(pair[1])
		if !okX || !okY {
			return Point{}, false
		}
		return Point{X: x, Y: y}, true
	}

	if !isMapping(v) {
		return Point{}, false
	}
	xv, _ := field(v, "x")
	yv, _ := field(v, "y")
	x, okX := number(xv)
	y, okY := number(yv)
	if !okX || !okY {
		return Point{}, false
	}
	return Point{X: x, Y: y}, true
}
