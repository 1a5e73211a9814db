package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/flightscrape/config"
)

func newTestClient(t *testing.T, maxRetries int) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(ClientOptions{
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Backoff:    time.Millisecond,
		Headers:    map[string]string{"x-api-key": "secret"},
	})
	require.NoError(t, err)
	return c
}

func TestGetRawRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"cabin":"economy"}]}`))
	}))
	defer srv.Close()

	body, err := newTestClient(t, 2).GetRaw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.JSONEq(t, `{"results":[{"cabin":"economy"}]}`, string(body))
}

func TestGetRawDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such search", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, 3).GetRaw(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "no such search", statusErr.Body)
	assert.False(t, statusErr.Temporary())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetRawReturnsLastErrorWhenRetriesRunOut(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, 1).GetRaw(context.Background(), srv.URL)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestTransportErrorsAreRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newTestClient(t, 1).GetRaw(context.Background(), addr)
	require.Error(t, err)
	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}

func TestRequestsCarryMergedHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := newTestClient(t, 0).GetRaw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "secret", got.Get("X-Api-Key"))
	assert.Equal(t, config.Default().Source.UserAgent, got.Get("User-Agent"))
	assert.Contains(t, got.Get("Accept"), "application/json")
}

func TestRetryBackoffHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(ClientOptions{MaxRetries: 5, Backoff: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.GetRaw(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"legs":[]}]`))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "raw", "cgk-syd.json")
	require.NoError(t, newTestClient(t, 0).DownloadFile(context.Background(), srv.URL, dest))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `[{"legs":[]}]`, string(content))
}

func TestNewHTTPClientRejectsBadProxy(t *testing.T) {
	_, err := NewHTTPClient(ClientOptions{ProxyURL: "://nowhere"})
	require.Error(t, err)

	c, err := NewHTTPClient(OptionsFromConfig(config.Default().Source))
	require.NoError(t, err)
	assert.Equal(t, 2, c.maxRetries)
}
