package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"soundstage/internal/config"
	"soundstage/internal/logging"
	"soundstage/internal/meter"
	"soundstage/internal/player"
)

func newMeterCommand(ctx *commandContext) *cobra.Command {
	var plain bool
	var runFor time.Duration

	cmd := &cobra.Command{
		Use:   "meter",
		Short: "Show the playing track with a live level meter",
		Long: "Show the playing track with a live level meter.\n\n" +
			"On a terminal this opens a full-screen view with transport keys. Otherwise, or with --plain,\n" +
			"it prints one status line per refresh. Edits to the [smoother] section apply without a restart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			interactive := !plain && isTerminal(out)

			s, err := ctx.openSession(cmd.Context(), sessionOptions{quiet: interactive, exclusive: true})
			if err != nil {
				return err
			}
			defer s.Close()

			logger := s.logger
			runCtx := cmd.Context()
			if runFor > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, runFor)
				defer cancel()
			}
			runCtx, cancel := context.WithCancel(runCtx)
			defer cancel()

			g, gctx := errgroup.WithContext(runCtx)
			g.Go(func() error { return s.player.Run(gctx) })
			if _, err := os.Stat(ctx.configPath); err == nil {
				g.Go(func() error {
					return config.Watch(gctx, ctx.configPath, func(cfg *config.Config) {
						applySmoother(s.player, cfg, logger)
					}, func(err error) {
						logging.WarnWithContext(logger, "config reload failed", "config_reload",
							logging.String(logging.FieldErrorHint, "fix the config file; the previous smoother settings stay in effect"),
							logging.Error(err),
						)
					})
				})
			}

			levels, unsubscribe := s.player.Level().Subscribe()
			defer unsubscribe()

			g.Go(func() error {
				defer cancel()
				if interactive {
					return runInteractive(gctx, s.player, levels)
				}
				return runPlain(gctx, out, s.player)
			})

			err = g.Wait()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print status lines instead of the full-screen view")
	cmd.Flags().DurationVar(&runFor, "for", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runInteractive(ctx context.Context, p *player.Player, levels <-chan float64) error {
	program := tea.NewProgram(meter.New(ctx, p, levels, p.Updates()), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, err := program.Run()
	return err
}

func runPlain(ctx context.Context, out io.Writer, p *player.Player) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-p.Updates():
			fmt.Fprintln(out, meter.PlainLine(snap, p.Level().Displayed()))
		}
	}
}

func applySmoother(p *player.Player, cfg *config.Config, logger *slog.Logger) {
	params, err := player.LevelParams(cfg)
	if err == nil {
		err = p.Level().SetParams(params)
	}
	if err != nil {
		logging.WarnWithContext(logger, "smoother settings rejected", "config_reload",
			logging.String(logging.FieldErrorHint, "check the [smoother] section"),
			logging.Error(err),
		)
		return
	}
	logger.Info("smoother settings reloaded",
		logging.Args(
			logging.Float64("divisor", params.Divisor),
			logging.Float64("epsilon", params.Epsilon),
			logging.String("mode", params.Mode.String()),
		)...,
	)
}
