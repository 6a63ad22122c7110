package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/internal/resilience"
)

var (
	ErrFetchFailed = errors.New("remote dataset fetch failed")
	ErrTooLarge    = errors.New("remote dataset exceeds size limit")
	ErrInvalidURL  = errors.New("invalid dataset url")
)

// Remote is a downloaded file ready for Read.
type Remote struct {
	Filename string
	Format   Format
	Body     []byte
}

// Fetcher downloads a dataset file from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Remote, error)
	Close() error
}

type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

type HTTPFetcherConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}

	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Remote, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*")

	logger.Debugf("Fetching dataset from %s", u.Redacted())

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrFetchFailed, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	name := remoteFilename(u, resp.Header.Get("Content-Disposition"))
	format, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Fetched %d bytes as %s", len(body), name)

	return &Remote{Filename: name, Format: format, Body: body}, nil
}

func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func remoteFilename(u *url.URL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			return path.Base(params["filename"])
		}
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		return base
	}
	return "remote.csv"
}

// ResilientFetcher retries a Fetcher behind a circuit breaker. Client-side
// errors (bad url, oversize, unsupported format) are returned without retry.
type ResilientFetcher struct {
	fetcher        Fetcher
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientFetcherConfig struct {
	Fetcher       Fetcher
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientFetcher(cfg ResilientFetcherConfig) *ResilientFetcher {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "source",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
		IsFailure:     retryable,
	})

	return &ResilientFetcher{
		fetcher:        cfg.Fetcher,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func retryable(err error) bool {
	return errors.Is(err, ErrFetchFailed) || errors.Is(err, context.DeadlineExceeded)
}

func (f *ResilientFetcher) Fetch(ctx context.Context, rawURL string) (*Remote, error) {
	var remote *Remote

	err := f.circuitBreaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var lastErr error
		for attempt := 1; attempt <= f.retryAttempts; attempt++ {
			var err error
			remote, err = f.fetcher.Fetch(ctx, rawURL)
			if err == nil {
				return nil
			}
			if !retryable(err) {
				return err
			}

			lastErr = err
			logger.Warnf("Fetch attempt %d/%d failed: %v", attempt, f.retryAttempts, err)

			if attempt < f.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(f.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return nil, err
	}
	return remote, nil
}

func (f *ResilientFetcher) Close() error {
	return f.fetcher.Close()
}

func (f *ResilientFetcher) CircuitState() resilience.State {
	return f.circuitBreaker.State()
}

func (f *ResilientFetcher) ResetCircuit() {
	f.circuitBreaker.Reset()
}
