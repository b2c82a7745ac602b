// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ink turns raw pen-stroke captures into a normalized vector drawing.

Capture payloads come from many producers (tablet apps, web canvas, imports)
and do not share a schema. A stroke may list its points under "points",
"path" or "segments", as [x, y] pairs or {x, y} objects, or split them into
parallel "x" and "y" arrays. The width may live under any of several keys.

# Pipeline

	captures → Collect → []NormalizedStroke → Bounds → Render → Drawing

Normalize runs the whole pipeline:

	drawing := ink.Normalize(captures)

Each stage is pure. Malformed strokes and points are dropped silently;
nothing in the pipeline returns an error or panics on bad input.

# Viewport

A drawing with geometry gets the bounding box grown by Padding (20 units) on
every side, with width and height clamped to at least 1. A drawing without
geometry gets FallbackViewport (0, 0, 1, 1).

# Output

	ink.WriteSVG(w, drawing)                      // image/svg+xml
	ink.RasterizePNG(w, drawing, ink.RasterOptions{MaxSize: 512})

RasterizePNG returns ErrNoGeometry for an empty drawing.

# Caching

Cache memoizes drawings keyed on capture batch identity and collapses
concurrent loads of the same key:

	cache := ink.NewCache(256)
	drawing, err := cache.Get(key, loadCaptures)
*/
package ink
