// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielhkuo/atlas/ink"
	"github.com/mattn/go-isatty"
)

const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"
)

var errTerminalPNG = errors.New("refusing to write PNG to a terminal; use --out or redirect")

type outputOptions struct {
	format string
	outDir string
	max    int
}

func (o outputOptions) validate() error {
	switch o.format {
	case formatSVG, formatPNG, formatJSON:
	default:
		return fmt.Errorf("unknown format %q (use svg, png or json)", o.format)
	}
	if o.max < 0 {
		return errors.New("--max cannot be negative")
	}
	return nil
}

// target returns the file written for a drawing named name, or "" for stdout
func (o outputOptions) target(name string) string {
	if o.outDir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(o.outDir, base+"."+o.format)
}

// emit writes d to the target for name, or to stdout
func (o outputOptions) emit(stdout io.Writer, name string, d ink.Drawing) (string, error) {
	path := o.target(name)
	if path == "" {
		if o.format == formatPNG && isTerminal(stdout) {
			return "", errTerminalPNG
		}
		return "", writeDrawing(stdout, d, o)
	}

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeDrawing(f, d, o); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeDrawing(w io.Writer, d ink.Drawing, o outputOptions) error {
	switch o.format {
	case formatPNG:
		return ink.RasterizePNG(w, d, ink.RasterOptions{MaxSize: o.max})
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return ink.WriteSVG(w, d)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
