package testsupport

import (
	"path/filepath"
	"testing"

	"soundstage/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test
// and fast poll timings. It applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Poll.MaxAttempts = 10
	cfgVal.Poll.IntervalMS = 5
	cfgVal.Poll.ReceiveTimeoutMS = 5
	cfgVal.Smoother.CadenceMS = 1
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithScenario writes a sim scenario into the temp tree and selects it.
func WithScenario(yaml string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "scenario.yaml")
		WriteFile(b.t, path, yaml)
		b.cfg.Widget.Backend = config.BackendSim
		b.cfg.Widget.Scenario = path
	}
}

// WithPoll overrides the poll attempt budget and spacing.
func WithPoll(maxAttempts, intervalMS int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Poll.MaxAttempts = maxAttempts
		b.cfg.Poll.IntervalMS = intervalMS
		b.cfg.Poll.ReceiveTimeoutMS = intervalMS
	}
}

// WithWaveformURL points the waveform fetch at a test server.
func WithWaveformURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Widget.WaveformURL = url
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
