package player

import (
	"fmt"

	"soundstage/internal/config"
	"soundstage/internal/level"
	"soundstage/internal/poll"
)

// LevelParams converts the [smoother] section.
func LevelParams(cfg *config.Config) (level.Params, error) {
	mode, err := level.ParseMode(cfg.Smoother.Mode)
	if err != nil {
		return level.Params{}, err
	}
	p := level.Params{
		Divisor: cfg.Smoother.Divisor,
		Epsilon: cfg.Smoother.Epsilon,
		Cadence: cfg.SmootherCadence(),
		Mode:    mode,
	}
	if err := p.Validate(); err != nil {
		return level.Params{}, fmt.Errorf("smoother: %w", err)
	}
	return p, nil
}

// PollOptions converts the [poll] section.
func PollOptions(cfg *config.Config) []poll.Option {
	return []poll.Option{
		poll.WithMaxAttempts(cfg.Poll.MaxAttempts),
		poll.WithInterval(cfg.PollInterval()),
		poll.WithReceiveTimeout(cfg.ReceiveTimeout()),
	}
}
