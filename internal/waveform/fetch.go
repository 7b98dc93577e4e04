package waveform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"soundstage/internal/logging"
)

const (
	userAgent    = "soundstage/0.1"
	maxBodyBytes = 8 << 20
)

// HTTPDoer describes the HTTP client used to fetch waveform data.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Data is the waveform document served next to a sound. Samples range over
// 0..Height.
type Data struct {
	Width   int   `json:"width"`
	Height  int   `json:"height"`
	Samples []int `json:"samples"`
}

// Fetcher downloads waveform documents.
type Fetcher struct {
	client HTTPDoer
	logger *slog.Logger
}

// NewFetcher returns a Fetcher using client, or an http.Client with timeout
// when client is nil.
func NewFetcher(client HTTPDoer, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client, logger: logging.NewComponentLogger(logger, "waveform")}
}

// Fetch downloads and decodes the waveform at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Data, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Data{}, errors.New("waveform url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Data{}, fmt.Errorf("build waveform request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return Data{}, fmt.Errorf("fetch waveform: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return Data{}, fmt.Errorf("waveform fetch returned %d", resp.StatusCode)
	}

	var data Data
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("decode waveform: %w", err)
	}
	if len(data.Samples) == 0 {
		return Data{}, errors.New("waveform has no samples")
	}
	f.logger.Debug("waveform fetched", logging.Args(
		logging.String("url", url),
		logging.Int("samples", len(data.Samples)),
		logging.Duration("elapsed", time.Since(start)),
	)...)
	return data, nil
}
