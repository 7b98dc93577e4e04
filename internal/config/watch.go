package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes each
// valid result to onChange. Invalid edits go to onError and leave the
// previous config in effect. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so editors that save
// by rename are still seen.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	if onChange == nil {
		return errors.New("watch config: onChange is required")
	}
	if onError == nil {
		onError = func(error) {}
	}
	target, err := expandPath(path)
	if err != nil {
		return err
	}
	if target == "" {
		return errors.New("watch config: path is required")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch config dir: %w", err)
	}

	var timer *time.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(fmt.Errorf("watch config: %w", err))
		case <-pending:
			pending = nil
			cfg, err := reload(target)
			if err != nil {
				onError(err)
				continue
			}
			onChange(cfg)
		}
	}
}

func reload(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
