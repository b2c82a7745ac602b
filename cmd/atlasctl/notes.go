// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/danielhkuo/atlas/atlasclient"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newNotesCmd() *cobra.Command {
	var server serverFlags

	cmd := &cobra.Command{
		Use:   "notes NOTEBOOK_ID",
		Short: "List the notes in a notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if server.token == "" {
				return errNoToken
			}

			client := atlasclient.New(server.server, server.token)
			notes, err := client.NotebookNotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCARDS\tUPDATED")
			for _, n := range notes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", n.ID, n.Title, n.FlashcardCount, humanize.Time(n.UpdatedAt))
			}
			return tw.Flush()
		},
	}

	server.register(cmd)
	return cmd
}
