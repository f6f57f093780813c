package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corvidlabs/quill/selflog"
)

// HTTP POSTs batches of JSON-lines to a collector endpoint. It validates
// its URL once at construction per spec.md §6: absolute, http/https
// scheme, no IPv6 bracketed host literal, no CRLF in host or path, and a
// port (if present) within 1..65535.
type HTTP struct {
	url     string
	headers map[string]string
	client  *http.Client
	retries int
	failed  bool
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithHeader sets a custom request header.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTP) { h.headers[key] = value }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.client.Timeout = d }
}

// WithRetries sets how many times a failed POST is retried.
func WithRetries(n int) HTTPOption {
	return func(h *HTTP) { h.retries = n }
}

// WithClient overrides the underlying *http.Client (e.g. for custom TLS
// configuration); the default uses http.DefaultTransport.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP validates rawURL and builds an HTTP transport.
func NewHTTP(rawURL string, opts ...HTTPOption) (*HTTP, error) {
	if err := validateHTTPURL(rawURL); err != nil {
		return nil, err
	}
	h := &HTTP{
		url:     rawURL,
		headers: map[string]string{"Content-Type": "application/x-ndjson"},
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func validateHTTPURL(raw string) error {
	if strings.ContainsAny(raw, "\r\n") {
		return fmt.Errorf("transport/http: URL contains CRLF")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("transport/http: invalid URL: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("transport/http: URL must be absolute")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("transport/http: scheme must be http or https, got %q", u.Scheme)
	}
	if strings.ContainsAny(u.Host, "[]") {
		return fmt.Errorf("transport/http: IPv6 bracketed host literals are rejected")
	}
	if strings.ContainsAny(u.Host, "\r\n") || strings.ContainsAny(u.Path, "\r\n") {
		return fmt.Errorf("transport/http: CRLF in host or path")
	}
	if portStr := u.Port(); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("transport/http: port out of range: %q", portStr)
		}
	}
	return nil
}

// Write POSTs p (one or more newline-delimited JSON records) to the
// configured URL, retrying up to h.retries times on failure.
func (h *HTTP) Write(p []byte) error {
	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff(attempt))
		}
		req, err := http.NewRequest(http.MethodPost, h.url, bytes.NewReader(p))
		if err != nil {
			lastErr = err
			continue
		}
		for k, v := range h.headers {
			req.Header.Set(k, v)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			h.failed = false
			return nil
		}
		lastErr = fmt.Errorf("transport/http: unexpected status %d", resp.StatusCode)
	}

	if !h.failed {
		selflog.Printf("transport/http: write failed: %v", lastErr)
		h.failed = true
	}
	return lastErr
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt) * 200 * time.Millisecond
	if d > 5*time.Second {
		return 5 * time.Second
	}
	return d
}

// Flush is a no-op: each Write is a complete, synchronous POST.
func (h *HTTP) Flush() error { return nil }

// Close is a no-op: HTTP holds no persistent connection of its own
// beyond the pooled connections http.Client already manages.
func (h *HTTP) Close() error { return nil }
