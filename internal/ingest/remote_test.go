package ingest_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/ingest"
	"github.com/OldStager01/energy-forecaster/internal/resilience"
)

const remoteCSV = "timestamp,load\n2024-01-01T00:00:00Z,10\n2024-01-01T01:00:00Z,12\n"

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/load.csv":
			fmt.Fprint(w, remoteCSV)
		case "/export":
			w.Header().Set("Content-Disposition", `attachment; filename="grid.xlsx"`)
			fmt.Fprint(w, "xx")
		case "/big.csv":
			fmt.Fprint(w, strings.Repeat("a", 64))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := ingest.NewHTTPFetcher(ingest.HTTPFetcherConfig{Timeout: time.Second, MaxBytes: 32})
	defer f.Close()

	tests := []struct {
		name       string
		url        string
		wantErr    error
		wantName   string
		wantFormat ingest.Format
	}{
		{name: "csv by path", url: srv.URL + "/data/load.csv", wantName: "load.csv", wantFormat: ingest.FormatCSV},
		{name: "name from disposition", url: srv.URL + "/export", wantName: "grid.xlsx", wantFormat: ingest.FormatXLSX},
		{name: "not found", url: srv.URL + "/missing.csv", wantErr: ingest.ErrFetchFailed},
		{name: "too large", url: srv.URL + "/big.csv", wantErr: ingest.ErrTooLarge},
		{name: "bad scheme", url: "ftp://example.com/x.csv", wantErr: ingest.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Fetch(context.Background(), tt.url)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Filename)
			assert.Equal(t, tt.wantFormat, got.Format)
		})
	}
}

func TestHTTPFetcher_BodyParses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, remoteCSV)
	}))
	defer srv.Close()

	got, err := ingest.NewHTTPFetcher(ingest.HTTPFetcherConfig{}).Fetch(context.Background(), srv.URL+"/a.csv")
	require.NoError(t, err)

	table, err := ingest.Read(bytes.NewReader(got.Body), got.Format)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

type flakyFetcher struct {
	calls    atomic.Int32
	failures int32
	err      error
}

func (f *flakyFetcher) Fetch(ctx context.Context, rawURL string) (*ingest.Remote, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, f.err
	}
	return &ingest.Remote{Filename: "x.csv", Format: ingest.FormatCSV}, nil
}

func (f *flakyFetcher) Close() error { return nil }

func TestResilientFetcher(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		err       error
		wantErr   error
		wantCalls int32
	}{
		{name: "recovers within retries", failures: 2, err: ingest.ErrFetchFailed, wantCalls: 3},
		{name: "gives up after retries", failures: 10, err: ingest.ErrFetchFailed, wantErr: ingest.ErrFetchFailed, wantCalls: 3},
		{name: "client error not retried", failures: 10, err: ingest.ErrTooLarge, wantErr: ingest.ErrTooLarge, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &flakyFetcher{failures: tt.failures, err: tt.err}
			f := ingest.NewResilientFetcher(ingest.ResilientFetcherConfig{
				Fetcher:       inner,
				MaxFailures:   5,
				Timeout:       time.Hour,
				RetryAttempts: 3,
				RetryDelay:    time.Millisecond,
			})

			_, err := f.Fetch(context.Background(), "http://example.com/x.csv")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, inner.calls.Load())
		})
	}
}

func TestResilientFetcher_OpensCircuit(t *testing.T) {
	inner := &flakyFetcher{failures: 100, err: ingest.ErrFetchFailed}
	f := ingest.NewResilientFetcher(ingest.ResilientFetcherConfig{
		Fetcher:       inner,
		MaxFailures:   2,
		Timeout:       time.Hour,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})

	for i := 0; i < 2; i++ {
		_, _ = f.Fetch(context.Background(), "http://example.com/x.csv")
	}
	assert.Equal(t, resilience.StateOpen, f.CircuitState())

	_, err := f.Fetch(context.Background(), "http://example.com/x.csv")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), inner.calls.Load())

	f.ResetCircuit()
	assert.Equal(t, resilience.StateClosed, f.CircuitState())
}
