package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"soundstage/internal/widget"
)

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var (
		opts    widget.LoadOptions
		timeout time.Duration
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "load <track-url>",
		Short: "Point the widget at a new track or playlist and wait until it is ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			s, err := ctx.openSession(cmd.Context(), sessionOptions{exclusive: true})
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.player.Load(cmd.Context(), url, opts, timeout); err != nil {
				return err
			}
			snap, err := s.player.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"url":   url,
					"index": snap.Index,
					"sound": snap.Sound,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s\n", url)
			if snap.Sound != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Now %s\n", describeSound(*snap.Sound))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.AutoPlay, "autoplay", false, "Start playing once loaded")
	cmd.Flags().BoolVar(&opts.ShowArtwork, "artwork", true, "Show artwork in the widget")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "How long to wait for the widget to become ready")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
