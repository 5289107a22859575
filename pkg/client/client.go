// Package client is a thin JSON client for the mch REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

// BusyTracker counts requests in flight. The busy indicator is on while the
// count is positive.
type BusyTracker struct {
	n        atomic.Int64
	onChange func(busy bool)
}

// NewBusyTracker returns a tracker that calls onChange when the indicator
// flips. onChange may be nil.
func NewBusyTracker(onChange func(busy bool)) *BusyTracker {
	return &BusyTracker{onChange: onChange}
}

func (b *BusyTracker) acquire() {
	if b.n.Add(1) == 1 && b.onChange != nil {
		b.onChange(true)
	}
}

func (b *BusyTracker) release() {
	if b.n.Add(-1) == 0 && b.onChange != nil {
		b.onChange(false)
	}
}

// Busy reports whether any request is in flight.
func (b *BusyTracker) Busy() bool {
	return b.n.Load() > 0
}

// Client issues requests against the API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
	busy    *BusyTracker
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the source of the bearer token. An empty token sends no
// Authorization header.
func WithToken(fn func() string) Option {
	return func(c *Client) { c.token = fn }
}

func WithBusyTracker(b *BusyTracker) Option {
	return func(c *Client) { c.busy = b }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for baseURL, e.g. "http://localhost:8000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
		busy:    NewBusyTracker(nil),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Busy returns the client's busy tracker.
func (c *Client) Busy() *BusyTracker {
	return c.busy
}

// Do sends a JSON request. body is encoded when non-nil and the response is
// decoded into out when out is non-nil. Response keys are normalized to
// snake_case before decoding.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	normalized, err := NormalizeJSON(raw)
	if err != nil {
		return fmt.Errorf("normalize response: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Download sends a GET and returns the raw body, for non-JSON payloads.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	c.busy.acquire()
	defer c.busy.release()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	return raw, nil
}

func errorMessage(status int, raw []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "error"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}
