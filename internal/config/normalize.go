package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePoll()
	c.normalizeSmoother()
	if err := c.normalizeWidget(); err != nil {
		return err
	}
	if err := c.normalizeDeploy(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePoll() {
	// A zero receive timeout follows the interval.
	if c.Poll.ReceiveTimeoutMS == 0 {
		c.Poll.ReceiveTimeoutMS = c.Poll.IntervalMS
	}
}

func (c *Config) normalizeSmoother() {
	c.Smoother.Mode = strings.ToLower(strings.TrimSpace(c.Smoother.Mode))
	if c.Smoother.Mode == "" {
		c.Smoother.Mode = defaultSmootherMode
	}
}

func (c *Config) normalizeWidget() error {
	c.Widget.Backend = strings.ToLower(strings.TrimSpace(c.Widget.Backend))
	if c.Widget.Backend == "" {
		c.Widget.Backend = defaultWidgetBackend
	}
	if value, ok := os.LookupEnv(trackURLEnv); ok && strings.TrimSpace(value) != "" {
		c.Widget.TrackURL = value
	}
	if value, ok := os.LookupEnv(debuggerURLEnv); ok && strings.TrimSpace(value) != "" {
		c.Widget.DebuggerURL = value
	}
	c.Widget.TrackURL = strings.TrimSpace(c.Widget.TrackURL)
	c.Widget.EmbedURL = strings.TrimSpace(c.Widget.EmbedURL)
	if c.Widget.EmbedURL == "" {
		c.Widget.EmbedURL = defaultEmbedURL
	}
	c.Widget.DebuggerURL = strings.TrimSpace(c.Widget.DebuggerURL)
	c.Widget.WaveformURL = strings.TrimSpace(c.Widget.WaveformURL)
	c.Widget.BrowserBin = strings.TrimSpace(c.Widget.BrowserBin)
	if c.Widget.RequestTimeout == 0 {
		c.Widget.RequestTimeout = defaultRequestTimeout
	}
	var err error
	if c.Widget.Scenario, err = expandPath(strings.TrimSpace(c.Widget.Scenario)); err != nil {
		return fmt.Errorf("widget.scenario: %w", err)
	}
	return nil
}

func (c *Config) normalizeDeploy() error {
	var err error
	if strings.TrimSpace(c.Deploy.EnvFile) == "" {
		c.Deploy.EnvFile = defaultDeployEnvFile
	}
	if c.Deploy.EnvFile, err = expandPath(c.Deploy.EnvFile); err != nil {
		return fmt.Errorf("deploy.env_file: %w", err)
	}
	files := c.Deploy.TemplateFiles[:0]
	for _, file := range c.Deploy.TemplateFiles {
		if strings.TrimSpace(file) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(file))
		if err != nil {
			return fmt.Errorf("deploy.template_files: %w", err)
		}
		files = append(files, expanded)
	}
	c.Deploy.TemplateFiles = files
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
