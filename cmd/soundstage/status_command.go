package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soundstage/internal/preflight"
	"soundstage/internal/textutil"
	"soundstage/internal/widget"
)

type statusOutput struct {
	Preflight []preflight.Result `json:"preflight"`
	Snapshot  *statusSnapshot    `json:"snapshot,omitempty"`
}

type statusSnapshot struct {
	Paused     bool          `json:"paused"`
	Index      int           `json:"index"`
	PositionMS int64         `json:"position_ms"`
	DurationMS int64         `json:"duration_ms"`
	Volume     float64       `json:"volume"`
	Sound      *widget.Sound `json:"sound,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var skipWidget bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run preflight checks and show what the widget is playing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)
			output := statusOutput{Preflight: results}

			var snap *widget.Snapshot
			if len(failed) == 0 && !skipWidget {
				s, err := ctx.openSession(cmd.Context(), sessionOptions{})
				if err != nil {
					return err
				}
				defer s.Close()

				got, err := s.player.Client().Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				snap = &got
				output.Snapshot = &statusSnapshot{
					Paused:     got.Paused,
					Index:      got.Index,
					PositionMS: got.Position.Milliseconds(),
					DurationMS: got.Duration.Milliseconds(),
					Volume:     got.Volume,
					Sound:      got.Sound,
				}
			}

			if jsonOut {
				if err := writeJSON(cmd, output); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderPreflight(results))
				if snap != nil {
					fmt.Fprintln(out, renderKeyValues("Widget", snapshotPairs(*snap)))
				}
			}

			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, r := range failed {
					names = append(names, r.Name)
				}
				return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&skipWidget, "preflight-only", false, "Skip opening the widget")
	return cmd
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "OK"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return renderTable("Preflight", []string{"Check", "Status", "Detail"}, rows, nil)
}

func snapshotPairs(snap widget.Snapshot) [][2]string {
	state := "playing"
	if snap.Paused {
		state = "paused"
	}
	pairs := [][2]string{
		{"State", state},
		{"Position", fmt.Sprintf("%s / %s (%.0f%%)", textutil.FormatTime(snap.Position), textutil.FormatTime(snap.Duration), snap.Progress()*100)},
		{"Volume", fmt.Sprintf("%.0f", snap.Volume)},
		{"Index", fmt.Sprintf("%d", snap.Index)},
	}
	sound := snap.Sound
	if sound == nil {
		return pairs
	}
	pairs = append(pairs, [2]string{"Title", sound.Title})
	if artist := sound.Artist(); artist != "" {
		pairs = append(pairs, [2]string{"Artist", artist})
	}
	if genre := strings.TrimSpace(sound.Genre); genre != "" {
		pairs = append(pairs, [2]string{"Genre", textutil.Title(genre)})
	}
	pairs = append(pairs,
		[2]string{"Plays", textutil.FormatInt(sound.PlaybackCount)},
		[2]string{"Likes", textutil.FormatInt(sound.LikesCount)},
		[2]string{"Reposts", textutil.FormatInt(sound.RepostsCount)},
		[2]string{"Comments", textutil.FormatInt(sound.CommentCount)},
	)
	if created, ok := sound.Created(); ok {
		pairs = append(pairs, [2]string{"Created", created.Format("2006-01-02")})
	}
	if sound.PermalinkURL != "" {
		pairs = append(pairs, [2]string{"Link", sound.PermalinkURL})
	}
	return pairs
}
