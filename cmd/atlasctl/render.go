// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/danielhkuo/atlas/ink"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const watchDebounce = 50 * time.Millisecond

func newRenderCmd() *cobra.Command {
	var (
		opts  outputOptions
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "render [files or globs...]",
		Short: "Render capture files to SVG, PNG or drawing JSON",
		Long: `Render reads capture batches from JSON or YAML files and writes one
drawing per file. Arguments may be doublestar globs such as
"captures/**/*.json". Without --out a single file renders to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 && !watch {
				return fmt.Errorf("no files match %s", strings.Join(args, " "))
			}
			if len(files) > 1 && opts.outDir == "" {
				return errors.New("--out is required when rendering more than one file")
			}

			stdout := cmd.OutOrStdout()
			failed := 0
			for _, path := range files {
				if err := renderFile(stdout, path, opts); err != nil {
					slog.Error("failed to render", "file", path, "error", err)
					failed++
				}
			}
			if !watch {
				if failed > 0 {
					return fmt.Errorf("%d of %d files failed to render", failed, len(files))
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchFiles(ctx, args, func(path string) {
				if err := renderFile(stdout, path, opts); err != nil {
					slog.Error("failed to render", "file", path, "error", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "Output format: svg, png or json")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Output directory (default stdout)")
	cmd.Flags().IntVar(&opts.max, "max", 0, "Longest PNG side in pixels (0 keeps the viewport size)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render files when they change")
	return cmd
}

// expandArgs resolves globs and literal paths to a sorted, deduplicated list
func expandArgs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadFile reads a capture document. .yaml and .yml files are YAML, anything
// else is JSON.
func loadFile(path string) ([]ink.Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		doc, err = ink.DecodePayload(data)
		if err != nil {
			return nil, err
		}
	}
	return ink.CapturesFrom(doc)
}

func renderFile(stdout io.Writer, path string, opts outputOptions) error {
	captures, err := loadFile(path)
	if err != nil {
		return err
	}
	d := ink.Normalize(captures)
	written, err := opts.emit(stdout, path, d)
	if err != nil {
		return err
	}
	slog.Debug("rendered", "file", path, "strokes", len(d.Strokes), "captures", len(captures), "out", written)
	return nil
}

// watchFiles calls fn for every written or created file matching one of
// patterns until ctx is done.
func watchFiles(ctx context.Context, patterns []string, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(patterns) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		slog.Debug("watching", "dir", dir)
	}
	return watchLoop(ctx, watcher.Events, watcher.Errors, patterns, fn)
}

// watchLoop debounces events per path and calls fn once a path has been
// quiet for watchDebounce. It returns when ctx is done or events closes.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, patterns []string, fn func(path string)) error {
	// Pending timers exit through ctx once the loop stops reading fire.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make(map[string]*time.Timer)
	fire := make(chan string)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !matchesAny(patterns, path) {
				continue
			}
			if t, ok := pending[path]; ok {
				t.Reset(watchDebounce)
				continue
			}
			pending[path] = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- path:
				case <-ctx.Done():
				}
			})
		case path := <-fire:
			delete(pending, path)
			fn(path)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

// watchDirs returns the directories holding the files a pattern can match.
// Recursive patterns watch every directory under their base.
func watchDirs(patterns []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
		base = filepath.FromSlash(base)
		if !strings.Contains(rest, "**") {
			matches, _ := doublestar.FilepathGlob(filepath.Dir(pattern), doublestar.WithNoFiles())
			if len(matches) == 0 {
				add(base)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}
		_ = filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(path)
			}
			return nil
		})
	}
	sort.Strings(dirs)
	return dirs
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if filepath.Clean(pattern) == path {
			return true
		}
		if ok, _ := doublestar.PathMatch(filepath.Clean(pattern), path); ok {
			return true
		}
	}
	return false
}
