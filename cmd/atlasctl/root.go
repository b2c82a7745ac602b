// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "atlasctl",
		Short: "Render and inspect Atlas handwriting captures",
		Long: `atlasctl turns stroke capture batches into SVG, PNG or drawing JSON.
It renders local capture files (JSON or YAML) or fetches a note's
captures from a running Atlas server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newRenderCmd(), newFetchCmd(), newNotesCmd())
	return root
}

// serverFlags are shared by the commands that talk to a server
type serverFlags struct {
	server string
	token  string
}

func (f *serverFlags) register(cmd *cobra.Command) {
	server := os.Getenv("ATLAS_SERVER")
	if server == "" {
		server = defaultServer
	}
	cmd.Flags().StringVar(&f.server, "server", server, "Atlas server URL (env ATLAS_SERVER)")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("ATLAS_TOKEN"), "Bearer token (env ATLAS_TOKEN)")
}
