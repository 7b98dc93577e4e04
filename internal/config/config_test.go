package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"soundstage/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "soundstage", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "soundstage"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Poll.MaxAttempts != 100 || cfg.PollInterval() != 50*time.Millisecond {
		t.Fatalf("unexpected poll defaults: %+v", cfg.Poll)
	}
	if cfg.ReceiveTimeout() != cfg.PollInterval() {
		t.Fatalf("receive timeout should follow interval, got %v", cfg.ReceiveTimeout())
	}
	if cfg.Smoother.Divisor != 10 || cfg.Smoother.Epsilon != 0.01 || cfg.Smoother.Mode != "ease" {
		t.Fatalf("unexpected smoother defaults: %+v", cfg.Smoother)
	}
	if cfg.Widget.Backend != config.BackendSim {
		t.Fatalf("expected sim backend by default, got %q", cfg.Widget.Backend)
	}
	if cfg.LockPath() != filepath.Join(cfg.Paths.StateDir, "soundstage.lock") {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "soundstage.toml")

	type payload struct {
		Poll struct {
			MaxAttempts      int `toml:"max_attempts"`
			IntervalMS       int `toml:"interval_ms"`
			ReceiveTimeoutMS int `toml:"receive_timeout_ms"`
		} `toml:"poll"`
		Smoother struct {
			Divisor float64 `toml:"divisor"`
			Mode    string  `toml:"mode"`
		} `toml:"smoother"`
		Widget struct {
			Backend  string `toml:"backend"`
			TrackURL string `toml:"track_url"`
		} `toml:"widget"`
	}
	custom := payload{}
	custom.Poll.MaxAttempts = 5
	custom.Poll.IntervalMS = 20
	custom.Poll.ReceiveTimeoutMS = 100
	custom.Smoother.Divisor = 4
	custom.Smoother.Mode = " Peak-Decay "
	custom.Widget.Backend = "BROWSER"
	custom.Widget.TrackURL = "https://soundcloud.com/artist/track"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Poll.MaxAttempts != 5 || cfg.PollInterval() != 20*time.Millisecond {
		t.Fatalf("poll overrides lost: %+v", cfg.Poll)
	}
	if cfg.ReceiveTimeout() != 100*time.Millisecond {
		t.Fatalf("expected receive timeout override, got %v", cfg.ReceiveTimeout())
	}
	if cfg.Smoother.Divisor != 4 || cfg.Smoother.Mode != "peak-decay" {
		t.Fatalf("smoother overrides lost: %+v", cfg.Smoother)
	}
	if cfg.Smoother.Epsilon != config.Default().Smoother.Epsilon {
		t.Fatalf("unset epsilon should keep default, got %v", cfg.Smoother.Epsilon)
	}
	if cfg.Widget.Backend != config.BackendBrowser {
		t.Fatalf("expected backend normalized to browser, got %q", cfg.Widget.Backend)
	}
}

func TestEnvVarOverridesTrackURL(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "soundstage.toml")
	contents := "[widget]\nbackend = \"browser\"\ntrack_url = \"https://soundcloud.com/file/track\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SOUNDSTAGE_TRACK_URL", "https://soundcloud.com/env/track")
	t.Setenv("SOUNDSTAGE_DEBUGGER_URL", "ws://127.0.0.1:9222/devtools/browser/abc")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Widget.TrackURL != "https://soundcloud.com/env/track" {
		t.Errorf("expected track url from env, got %q", cfg.Widget.TrackURL)
	}
	if !strings.HasPrefix(cfg.Widget.DebuggerURL, "ws://127.0.0.1:9222") {
		t.Errorf("expected debugger url from env, got %q", cfg.Widget.DebuggerURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[smoother]") {
		t.Fatalf("sample config missing smoother section: %s", contents)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if cfg.Smoother.CadenceMS != 16 {
		t.Fatalf("expected sample cadence 16, got %d", cfg.Smoother.CadenceMS)
	}
	if !strings.Contains(cfg.Paths.StateDir, "soundstage") {
		t.Fatalf("expected state dir to contain soundstage, got %q", cfg.Paths.StateDir)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "state", "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero attempts", func(c *config.Config) { c.Poll.MaxAttempts = 0 }},
		{"zero interval", func(c *config.Config) { c.Poll.IntervalMS = 0 }},
		{"negative receive timeout", func(c *config.Config) { c.Poll.ReceiveTimeoutMS = -1 }},
		{"divisor one", func(c *config.Config) { c.Smoother.Divisor = 1 }},
		{"epsilon too large", func(c *config.Config) { c.Smoother.Epsilon = 1 }},
		{"zero cadence", func(c *config.Config) { c.Smoother.CadenceMS = 0 }},
		{"unknown mode", func(c *config.Config) { c.Smoother.Mode = "wobble" }},
		{"unknown backend", func(c *config.Config) { c.Widget.Backend = "flash" }},
		{"browser without track", func(c *config.Config) { c.Widget.Backend = config.BackendBrowser }},
		{"browser with bad track", func(c *config.Config) {
			c.Widget.Backend = config.BackendBrowser
			c.Widget.TrackURL = "soundcloud.com/no-scheme"
		}},
		{"bad debugger url", func(c *config.Config) {
			c.Widget.Backend = config.BackendBrowser
			c.Widget.TrackURL = "https://soundcloud.com/a/b"
			c.Widget.DebuggerURL = "ftp://host"
		}},
		{"bad waveform url", func(c *config.Config) { c.Widget.WaveformURL = "not a url" }},
		{"zero request timeout", func(c *config.Config) { c.Widget.RequestTimeout = 0 }},
		{"unknown log level", func(c *config.Config) { c.Logging.Level = "chatty" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
