package preflight

import (
	"context"

	"soundstage/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunAll executes all applicable preflight checks for the given config.
// Widget checks depend on the configured backend.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	switch cfg.Widget.Backend {
	case config.BackendBrowser:
		results = append(results, CheckBrowser(cfg.Widget.BrowserBin, cfg.Widget.DebuggerURL))
		results = append(results, CheckURL(ctx, "Track", cfg.Widget.TrackURL, cfg.RequestTimeout()))
	default:
		results = append(results, CheckScenario(cfg.Widget.Scenario))
	}

	if cfg.Widget.WaveformURL != "" {
		results = append(results, CheckURL(ctx, "Waveform", cfg.Widget.WaveformURL, cfg.RequestTimeout()))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
