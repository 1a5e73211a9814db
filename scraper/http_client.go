// scraper/http_client.go
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/logging"
)

const maxErrorBodyLen = 256

// ClientOptions configures an HTTPClient. Zero values fall back to the
// defaults of config.Default().
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	ProxyURL   string
	UserAgent  string
	Headers    map[string]string
	// Transport overrides the underlying round tripper. ProxyURL is ignored when set.
	Transport http.RoundTripper
}

// OptionsFromConfig maps the source section of the app config to ClientOptions.
func OptionsFromConfig(cfg config.SourceConfig) ClientOptions {
	return ClientOptions{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.Backoff,
		ProxyURL:   cfg.ProxyURL,
		UserAgent:  cfg.UserAgent,
		Headers:    cfg.Headers,
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string // first bytes of the response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Temporary reports whether the request is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}

// HTTPClient fetches upstream search payloads with retries. It is safe for
// concurrent use.
type HTTPClient struct {
	client     *http.Client
	headers    map[string]string
	maxRetries int
	backoff    time.Duration
}

// NewHTTPClient builds a client. It fails only when ProxyURL does not parse.
func NewHTTPClient(opts ClientOptions) (*HTTPClient, error) {
	def := config.Default().Source
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}

	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if opts.ProxyURL != "" {
			proxy, err := url.Parse(opts.ProxyURL)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy url %q: %w", opts.ProxyURL, err)
			}
			t.Proxy = http.ProxyURL(proxy)
		}
		transport = t
	}

	headers := map[string]string{
		"User-Agent": opts.UserAgent,
		"Accept":     "application/json, text/html;q=0.9, */*;q=0.8",
	}
	for k, v := range opts.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}

	return &HTTPClient{
		client:     &http.Client{Timeout: opts.Timeout, Transport: transport},
		headers:    headers,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}, nil
}

// GetRaw returns the response body unchanged. Services use it so they can
// hash the exact bytes they normalized; DecodePayload turns it into a value.
func (c *HTTPClient) GetRaw(ctx context.Context, rawURL string) ([]byte, error) {
	return c.get(ctx, rawURL)
}

// DownloadFile saves the response body to localSavePath, creating parent
// directories as needed.
func (c *HTTPClient) DownloadFile(ctx context.Context, rawURL, localSavePath string) error {
	logging.L().Infof("Scraper: downloading %s to %s", rawURL, localSavePath)

	body, err := c.get(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", rawURL, err)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	outFile, err := os.Create(localSavePath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localSavePath, err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}

	logging.L().Infof("Scraper: downloaded %d bytes from %s to %s", len(body), rawURL, localSavePath)
	return nil
}

// get runs the request up to maxRetries+1 times. 4xx responses are returned
// at once; 5xx responses and transport errors are retried after
// backoff*attempt.
func (c *HTTPClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		body, err := c.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		wait := c.backoff * time.Duration(attempt+1)
		logging.L().Warnf("Scraper: attempt %d/%d for %s failed: %v; retrying in %s",
			attempt+1, c.maxRetries+1, rawURL, err, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (c *HTTPClient) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make GET request to %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
