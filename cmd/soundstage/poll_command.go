package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"soundstage/internal/poll"
	"soundstage/internal/textutil"
	"soundstage/internal/widget"
)

type queryFunc func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error)

var pollQueries = map[string]queryFunc{
	widget.QueryPosition: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.Position(ctx, opts...)
	},
	widget.QueryDuration: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.Duration(ctx, opts...)
	},
	widget.QueryVolume: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.Volume(ctx, opts...)
	},
	widget.QueryCurrentSound: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.CurrentSound(ctx, opts...)
	},
	widget.QuerySounds: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.Sounds(ctx, opts...)
	},
	widget.QuerySoundIndex: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.CurrentSoundIndex(ctx, opts...)
	},
	widget.QueryPaused: func(ctx context.Context, c *widget.Client, opts ...poll.Option) (any, error) {
		return c.Paused(ctx, opts...)
	},
}

func pollQueryNames() []string {
	names := make([]string, 0, len(pollQueries))
	for name := range pollQueries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type pollResult struct {
	Query     string `json:"query"`
	Value     any    `json:"value"`
	Attempts  int    `json:"attempts"`
	Replies   int    `json:"replies"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func newPollCommand(ctx *commandContext) *cobra.Command {
	var attempts int
	var interval time.Duration
	var timeout time.Duration
	var jsonOut bool

	cmd := &cobra.Command{
		Use:       "poll <query>",
		Short:     "Query the widget until it gives a usable answer",
		Long:      "Query the widget until it gives a usable answer.\n\nQueries: " + strings.Join(pollQueryNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: pollQueryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			fn, ok := pollQueries[name]
			if !ok {
				return fmt.Errorf("unknown query %q (want one of %s)", args[0], strings.Join(pollQueryNames(), ", "))
			}

			s, err := ctx.openSession(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			var stats poll.Stats
			opts := []poll.Option{poll.WithStats(&stats)}
			if cmd.Flags().Changed("attempts") {
				opts = append(opts, poll.WithMaxAttempts(attempts))
			}
			if cmd.Flags().Changed("interval") {
				opts = append(opts, poll.WithInterval(interval))
			}
			if cmd.Flags().Changed("timeout") {
				opts = append(opts, poll.WithReceiveTimeout(timeout))
			}

			value, err := fn(cmd.Context(), s.player.Client(), opts...)
			if err != nil {
				return fmt.Errorf("%s after %d attempts: %w", name, stats.Attempts, err)
			}

			if jsonOut {
				return writeJSON(cmd, pollResult{
					Query:     name,
					Value:     jsonValue(value),
					Attempts:  stats.Attempts,
					Replies:   stats.Replies,
					ElapsedMS: stats.Elapsed.Milliseconds(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatPollValue(value))
			fmt.Fprintf(out, "(%d attempts, %d replies, %s)\n", stats.Attempts, stats.Replies, stats.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 0, "Override poll.max_attempts")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Override poll.interval_ms")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override poll.receive_timeout_ms")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

// jsonValue reports durations in milliseconds, matching the widget's units.
func jsonValue(v any) any {
	if d, ok := v.(time.Duration); ok {
		return d.Milliseconds()
	}
	return v
}

func formatPollValue(v any) string {
	switch value := v.(type) {
	case time.Duration:
		return textutil.FormatTime(value)
	case float64:
		return fmt.Sprintf("%.0f", value)
	case bool:
		return yesNo(value)
	case *widget.Sound:
		return describeSound(*value)
	case []widget.Sound:
		lines := make([]string, 0, len(value))
		for i, sound := range value {
			lines = append(lines, fmt.Sprintf("%2d. %s", i, describeSound(sound)))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(value)
	}
}

func describeSound(s widget.Sound) string {
	parts := []string{fmt.Sprintf("%q", s.Title)}
	if artist := s.Artist(); artist != "" {
		parts = append(parts, "by "+artist)
	}
	parts = append(parts, "["+textutil.FormatTime(s.Duration())+"]")
	return strings.Join(parts, " ")
}
