// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ink

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSVG writes d as a standalone SVG document. Paths are emitted in
// z-order with round caps and joins.
func WriteSVG(w io.Writer, d Drawing) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s" preserveAspectRatio="xMidYMid meet">`, d.Viewport.ViewBox())
	bw.WriteByte('\n')
	for _, p := range d.Paths {
		fmt.Fprintf(bw,
			`  <path d="%s" fill="none" stroke="black" stroke-linecap="round" stroke-linejoin="round" stroke-width="%d"/>`,
			p.D(), p.Width)
		bw.WriteByte('\n')
	}
	bw.WriteString("</svg>\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
