// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

type bounds struct {
	box   BoundingBox
	isSet bool
}

func (b *bounds) add(p Point) {
	if !b.isSet {
		b.box = BoundingBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		b.isSet = true
		return
	}
	b.box.MinX = min(b.box.MinX, p.X)
	b.box.MinY = min(b.box.MinY, p.Y)
	b.box.MaxX = max(b.box.MaxX, p.X)
	b.box.MaxY = max(b.box.MaxY, p.Y)
}

// Bounds returns the smallest box containing every point of every stroke.
// ok is false when there are no points at all; the zero box is never a
// stand-in for "nothing to draw".
func Bounds(strokes []NormalizedStroke) (box BoundingBox, ok bool) {
	var b bounds
	for _, s := range strokes {
		for _, p := range s.Points {
			b.add(p)
		}
	}
	return b.box, b.isSet
}
