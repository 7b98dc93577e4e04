package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Poll tunes the retrying widget accessors.
type Poll struct {
	MaxAttempts      int `toml:"max_attempts"`
	IntervalMS       int `toml:"interval_ms"`
	ReceiveTimeoutMS int `toml:"receive_timeout_ms"`
}

// Smoother tunes the displayed-level loop. It is the only section that
// hot-reloads.
type Smoother struct {
	Divisor   float64 `toml:"divisor"`
	Epsilon   float64 `toml:"epsilon"`
	CadenceMS int     `toml:"cadence_ms"`
	Mode      string  `toml:"mode"`
}

// Widget selects and configures the player backend.
type Widget struct {
	Backend        string `toml:"backend"`
	TrackURL       string `toml:"track_url"`
	EmbedURL       string `toml:"embed_url"`
	Scenario       string `toml:"scenario"`
	Headless       bool   `toml:"headless"`
	BrowserBin     string `toml:"browser_bin"`
	DebuggerURL    string `toml:"debugger_url"`
	WaveformURL    string `toml:"waveform_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Deploy configures the env-file templating step.
type Deploy struct {
	EnvFile       string   `toml:"env_file"`
	TemplateFiles []string `toml:"template_files"`
}

// Config encapsulates all configuration values for soundstage.
//
// Configuration sections by subsystem:
//   - Paths: state (session lock) and log directories
//   - Poll: attempt budget and spacing for widget queries
//   - Smoother: displayed-level divisor, tolerance, cadence and mode
//   - Widget: backend selection (sim or browser) and its inputs
//   - Logging: log format and level
//   - Deploy: env file and files to template
type Config struct {
	Paths    Paths    `toml:"paths"`
	Poll     Poll     `toml:"poll"`
	Smoother Smoother `toml:"smoother"`
	Widget   Widget   `toml:"widget"`
	Logging  Logging  `toml:"logging"`
	Deploy   Deploy   `toml:"deploy"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/soundstage/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("soundstage.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the session lock file inside the state directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "soundstage.lock")
}

// PollInterval returns the spacing between widget query attempts.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// ReceiveTimeout returns how long one attempt waits for a reply.
func (c *Config) ReceiveTimeout() time.Duration {
	return time.Duration(c.Poll.ReceiveTimeoutMS) * time.Millisecond
}

// SmootherCadence returns the time between smoothing steps.
func (c *Config) SmootherCadence() time.Duration {
	return time.Duration(c.Smoother.CadenceMS) * time.Millisecond
}

// RequestTimeout bounds HTTP fetches such as waveform data.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Widget.RequestTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
