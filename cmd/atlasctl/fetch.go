// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"log/slog"

	"github.com/danielhkuo/atlas/atlasclient"
	"github.com/danielhkuo/atlas/ink"
	"github.com/spf13/cobra"
)

var errNoToken = errors.New("a token is required (--token or ATLAS_TOKEN)")

func newFetchCmd() *cobra.Command {
	var (
		server serverFlags
		opts   outputOptions
	)

	cmd := &cobra.Command{
		Use:   "fetch NOTE_ID",
		Short: "Fetch a note's captures and render them locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if server.token == "" {
				return errNoToken
			}

			noteID := args[0]
			client := atlasclient.New(server.server, server.token)
			captures, err := client.Captures(cmd.Context(), noteID)
			if err != nil {
				return err
			}

			d := ink.Normalize(captures)
			written, err := opts.emit(cmd.OutOrStdout(), noteID, d)
			if err != nil {
				return err
			}
			slog.Debug("fetched", "note", noteID, "captures", len(captures), "strokes", len(d.Strokes), "out", written)
			return nil
		},
	}

	server.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "Output format: svg, png or json")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Output directory (default stdout)")
	cmd.Flags().IntVar(&opts.max, "max", 0, "Longest PNG side in pixels (0 keeps the viewport size)")
	return cmd
}
