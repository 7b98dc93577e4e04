package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"soundstage/internal/level"
	"soundstage/internal/player"
)

func newSmoothCommand(ctx *commandContext) *cobra.Command {
	var from, to float64
	var divisor, epsilon float64
	var mode string
	var maxSteps int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "smooth",
		Short: "Trace the displayed level converging on a raw level",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			params, err := player.LevelParams(cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("divisor") {
				params.Divisor = divisor
			}
			if cmd.Flags().Changed("epsilon") {
				params.Epsilon = epsilon
			}
			if cmd.Flags().Changed("mode") {
				m, err := level.ParseMode(mode)
				if err != nil {
					return err
				}
				params.Mode = m
			}
			if err := params.Validate(); err != nil {
				return err
			}

			trace := level.Trace(from, to, params, maxSteps)
			predicted := level.StepsToConverge(from, to, params)
			converged := len(trace) > 0 && trace[len(trace)-1] == to

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"from":       from,
					"to":         to,
					"divisor":    params.Divisor,
					"epsilon":    params.Epsilon,
					"mode":       params.Mode.String(),
					"cadence_ms": params.Cadence.Milliseconds(),
					"steps":      trace,
					"predicted":  predicted,
					"converged":  converged,
				})
			}

			rows := make([][]string, 0, len(trace))
			for i, v := range trace {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.FormatFloat(v, 'f', 4, 64),
					(params.Cadence * time.Duration(i+1)).String(),
				})
			}
			title := fmt.Sprintf("%s %g → %g (k=%g, ε=%g)", params.Mode, from, to, params.Divisor, params.Epsilon)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(title, []string{"Step", "Displayed", "Elapsed"}, rows, []columnAlignment{alignRight, alignRight, alignRight}))
			if converged {
				fmt.Fprintf(out, "Converged in %d steps (predicted %d)\n", len(trace), predicted)
			} else {
				fmt.Fprintf(out, "Not converged after %d steps (predicted %d)\n", len(trace), predicted)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&from, "from", 0, "Starting displayed level")
	cmd.Flags().Float64Var(&to, "to", 1, "Raw level to converge on")
	cmd.Flags().Float64Var(&divisor, "divisor", level.DefaultDivisor, "Override smoother.divisor")
	cmd.Flags().Float64Var(&epsilon, "epsilon", level.DefaultEpsilon, "Override smoother.epsilon")
	cmd.Flags().StringVar(&mode, "mode", "", "Override smoother.mode (ease, peak-decay)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 200, "Stop tracing after this many steps")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
