// Package sdk is the Go client for the Pollster API. It owns the signed-in
// session: persistence, transparent refresh and auth-state change events.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pollster/pollster/internal/handler/dto"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to a Pollster API server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger

	Auth  *Auth
	Polls *Polls
}

type options struct {
	httpClient      *http.Client
	storage         Storage
	logger          *slog.Logger
	now             func() time.Time
	refreshInterval time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithStorage sets where the session is persisted. Defaults to memory.
func WithStorage(s Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithAutoRefreshInterval sets the auto-refresh tick. Defaults to DefaultAutoRefreshInterval.
func WithAutoRefreshInterval(d time.Duration) Option {
	return func(o *options) { o.refreshInterval = d }
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	o := options{
		refreshInterval: DefaultAutoRefreshInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient()
	}
	if o.storage == nil {
		o.storage = NewMemoryStorage()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.refreshInterval <= 0 {
		o.refreshInterval = DefaultAutoRefreshInterval
	}

	c := &Client{
		baseURL:    u,
		httpClient: o.httpClient,
		logger:     o.logger.With("component", "sdk"),
	}
	c.Auth = newAuth(c, o.storage, o.now, o.refreshInterval)
	c.Polls = &Polls{c: c}
	return c, nil
}

// Close stops background work. The persisted session is kept.
func (c *Client) Close() {
	c.Auth.StopAutoRefresh()
}

// do sends a JSON request and decodes a 2xx body into out when out is non-nil.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}

func pollPath(id string, rest ...string) string {
	p := "/api/v1/polls/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// errorsAsAPI unwraps err to an *APIError.
func errorsAsAPI(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
