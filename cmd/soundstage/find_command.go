package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFindCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "find <title...>",
		Short: "Play the playlist entry whose title best matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			s, err := ctx.openSession(cmd.Context(), sessionOptions{exclusive: true})
			if err != nil {
				return err
			}
			defer s.Close()

			sound, score, err := s.player.Find(cmd.Context(), query)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"query": query,
					"score": score,
					"sound": sound,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (match %.0f%%)\n", describeSound(sound), score*100)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
