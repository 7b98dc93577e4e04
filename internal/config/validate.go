package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePoll(); err != nil {
		return err
	}
	if err := c.ValidateSmoother(); err != nil {
		return err
	}
	if err := c.validateWidget(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePoll() error {
	if c.Poll.MaxAttempts <= 0 {
		return errors.New("poll.max_attempts must be positive")
	}
	if c.Poll.IntervalMS <= 0 {
		return errors.New("poll.interval_ms must be positive")
	}
	if c.Poll.ReceiveTimeoutMS < 0 {
		return errors.New("poll.receive_timeout_ms must not be negative")
	}
	return nil
}

// ValidateSmoother checks the hot-reloadable smoother section on its own.
func (c *Config) ValidateSmoother() error {
	if math.IsNaN(c.Smoother.Divisor) || c.Smoother.Divisor <= 1 {
		return errors.New("smoother.divisor must be greater than 1")
	}
	if math.IsNaN(c.Smoother.Epsilon) || c.Smoother.Epsilon <= 0 || c.Smoother.Epsilon >= 1 {
		return errors.New("smoother.epsilon must be between 0 and 1")
	}
	if c.Smoother.CadenceMS <= 0 {
		return errors.New("smoother.cadence_ms must be positive")
	}
	switch c.Smoother.Mode {
	case "ease", "peak-decay", "peak_decay", "peak":
	default:
		return fmt.Errorf("smoother.mode %q is not one of ease, peak-decay", c.Smoother.Mode)
	}
	return nil
}

func (c *Config) validateWidget() error {
	switch c.Widget.Backend {
	case BackendSim:
	case BackendBrowser:
		if c.Widget.TrackURL == "" {
			return fmt.Errorf("widget.track_url is required for the browser backend. Set %s or edit the config", trackURLEnv)
		}
		if err := validateHTTPURL("widget.track_url", c.Widget.TrackURL); err != nil {
			return err
		}
		if err := validateHTTPURL("widget.embed_url", c.Widget.EmbedURL); err != nil {
			return err
		}
		if c.Widget.DebuggerURL != "" {
			parsed, err := url.Parse(c.Widget.DebuggerURL)
			if err != nil || (parsed.Scheme != "ws" && parsed.Scheme != "wss" && parsed.Scheme != "http") {
				return errors.New("widget.debugger_url must be a ws:// or http:// DevTools address")
			}
		}
	default:
		return fmt.Errorf("widget.backend %q is not one of %s, %s", c.Widget.Backend, BackendSim, BackendBrowser)
	}
	if c.Widget.WaveformURL != "" {
		if err := validateHTTPURL("widget.waveform_url", c.Widget.WaveformURL); err != nil {
			return err
		}
	}
	if c.Widget.RequestTimeout <= 0 {
		return errors.New("widget.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, value)
	}
	return nil
}
