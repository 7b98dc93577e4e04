package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"soundstage/internal/config"
	"soundstage/internal/logging"
	"soundstage/internal/player"
	"soundstage/internal/waveform"
	"soundstage/internal/widget"
	"soundstage/internal/widget/browser"
	"soundstage/internal/widget/sim"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds the command logger. A quiet logger writes only to the log
// file so it cannot tear a full-screen view.
func (c *commandContext) logger(quiet bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !quiet {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, logging.FileName)},
	})
}

// session is an open widget wrapped in a player.
type session struct {
	widget widget.Widget
	player *player.Player
	logger *slog.Logger
	lock   *flock.Flock
}

type sessionOptions struct {
	quiet bool
	// exclusive takes the state-dir lock so only one session drives the
	// widget at a time.
	exclusive bool
}

func (c *commandContext) openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(opts.quiet)
	if err != nil {
		return nil, err
	}

	s := &session{logger: logger}
	if opts.exclusive {
		s.lock = flock.New(cfg.LockPath())
		ok, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("another soundstage session holds %s", cfg.LockPath())
		}
	}

	w, waveforms, err := openWidget(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.widget = w

	params, err := player.LevelParams(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.player = player.New(w, params,
		player.WithLogger(logger),
		player.WithPollOptions(player.PollOptions(cfg)...),
		player.WithWaveforms(waveforms),
	)
	return s, nil
}

func openWidget(ctx context.Context, cfg *config.Config, logger *slog.Logger) (widget.Widget, player.WaveformSource, error) {
	var httpWaveforms player.WaveformSource
	if cfg.Widget.WaveformURL != "" || cfg.Widget.Backend == config.BackendBrowser {
		httpWaveforms = player.HTTPWaveforms{
			Fetcher: waveform.NewFetcher(nil, cfg.RequestTimeout(), logger),
			URL:     cfg.Widget.WaveformURL,
		}
	}

	switch cfg.Widget.Backend {
	case config.BackendBrowser:
		w, err := browser.Open(ctx, browser.Options{
			TrackURL:       cfg.Widget.TrackURL,
			EmbedURL:       cfg.Widget.EmbedURL,
			Bin:            cfg.Widget.BrowserBin,
			DebuggerURL:    cfg.Widget.DebuggerURL,
			Headless:       cfg.Widget.Headless,
			RequestTimeout: cfg.RequestTimeout(),
			Logger:         logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open browser widget: %w", err)
		}
		return w, httpWaveforms, nil
	case config.BackendSim, "":
		sc, err := sim.LoadScenario(cfg.Widget.Scenario)
		if err != nil {
			return nil, nil, err
		}
		s, err := sim.New(sc, sim.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		if httpWaveforms != nil {
			return s, httpWaveforms, nil
		}
		return s, player.SimWaveforms{Sim: s}, nil
	default:
		return nil, nil, fmt.Errorf("unknown widget backend %q", cfg.Widget.Backend)
	}
}

// Close releases the player, the widget and the lock.
func (s *session) Close() {
	if s.player != nil {
		s.player.Close()
	}
	if s.widget != nil {
		_ = s.widget.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
