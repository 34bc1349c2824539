// Package backend is the single choke point for calls to the external
// invisibox REST API. It attaches the bearer credential, applies the fixed
// request timeout, and turns a 401 from any endpoint into a published
// session-invalidation event; everything else propagates to the caller.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/invisibox/invisibox-web/pkg/broadcast"
)

// Config holds backend client configuration. The base URL default is the
// public API host; it is a location, not a secret.
type Config struct {
	BaseURL string        `env:"BACKEND_BASE_URL" envDefault:"https://api.invisibox.email"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Invalidation is published whenever the backend rejects a bearer token.
// Subscribers (the web layer, a logging consumer) decide what to do; the
// transport itself never touches cookies or navigation.
type Invalidation struct {
	Path string
	At   time.Time
}

// Client calls the invisibox backend. All methods are safe for concurrent
// use.
type Client struct {
	http          *http.Client
	baseURL       string
	logger        *slog.Logger
	invalidations *broadcast.Broadcaster[Invalidation]
}

// New creates a Client. The broadcaster may be shared with other
// subsystems; a nil broadcaster disables invalidation events.
func New(cfg Config, log *slog.Logger, invalidations *broadcast.Broadcaster[Invalidation]) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		logger:        log,
		invalidations: invalidations,
	}
}

// do executes one JSON round trip. A non-empty token is attached as a
// bearer credential. out may be nil for calls whose body is ignored.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, path, token, out)
}

// send dispatches a prepared request and applies the shared response
// handling: bearer header, 401 interception, error mapping.
func (c *Client) send(req *http.Request, path, token string, out any) error {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connectivity failures surface unchanged; retry
		// policy belongs to the caller and none is applied here.
		return fmt.Errorf("backend: %s %s: %w", req.Method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		c.invalidate(path)
		return ErrUnauthorized
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.apiError(res, path)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", path, err)
	}
	return nil
}

// apiError extracts the backend-provided message so validation failures
// reach the user verbatim.
func (c *Client) apiError(res *http.Response, path string) error {
	apiErr := &APIError{Status: res.StatusCode}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&envelope); err == nil {
		if envelope.Message != "" {
			apiErr.Message = envelope.Message
		} else {
			apiErr.Message = envelope.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(res.StatusCode)
	}

	c.logger.Debug("backend call failed",
		slog.String("path", path),
		slog.Int("status", res.StatusCode),
	)
	return apiErr
}

func (c *Client) invalidate(path string) {
	c.logger.Info("backend rejected credentials", slog.String("path", path))
	if c.invalidations != nil {
		c.invalidations.Broadcast(broadcast.Message[Invalidation]{
			Data: Invalidation{Path: path, At: time.Now()},
		})
	}
}
