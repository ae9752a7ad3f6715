// Package apiclient is a small JSON client for the tillpoint REST API.
//
// Reads go through GetJSON, which applies a per-request timeout and retries with
// capped exponential backoff. Mutations go through Send and are attempted once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Config configures a Client.
type Config struct {
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
	MaxAttempts    int
	MaxBackoff     time.Duration
}

// Client talks to a remote tillpoint API.
type Client struct {
	baseURL        string
	http           *http.Client
	requestTimeout time.Duration
	maxAttempts    int
	baseBackoff    time.Duration
	maxBackoff     time.Duration
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiclient: status %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// New creates a client. The token, when set, is sent as a bearer token on every request.
func New(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	httpClient := http.DefaultClient
	if cfg.Token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), src)
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           httpClient,
		requestTimeout: cfg.RequestTimeout,
		maxAttempts:    cfg.MaxAttempts,
		baseBackoff:    200 * time.Millisecond,
		maxBackoff:     cfg.MaxBackoff,
	}
}

// envelope matches response.APIResponse on the server side.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetJSON fetches path once and decodes the envelope's data into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// LoadJSON is GetJSON for bulk loads such as the stock snapshot. Network
// errors and 5xx responses are retried with capped exponential backoff; 4xx
// responses are not.
func (c *Client) LoadJSON(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				return err
			}
		}
		lastErr = c.do(ctx, http.MethodGet, path, nil, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// Send issues a single mutation. in is encoded as the JSON body; out may be nil.
func (c *Client) Send(ctx context.Context, method, path string, in, out any) error {
	return c.do(ctx, method, path, in, out)
}

// GetRaw fetches a non-JSON resource such as a rendered receipt.
func (c *Client) GetRaw(ctx context.Context, path string) (string, []byte, error) {
	return c.fetch(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	_, raw, err := c.fetch(ctx, method, path, in)
	if err != nil {
		return err
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("apiclient: decode data: %w", err)
	}
	return nil
}

// fetch performs one request and returns the content type and body of a 2xx
// response. Other statuses become a StatusError.
func (c *Client) fetch(ctx context.Context, method, path string, in any) (string, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return "", nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return "", nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("apiclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		msg := env.Message
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", nil, &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}
	return resp.Header.Get("Content-Type"), raw, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt > 16 {
		return c.maxBackoff
	}
	d := c.baseBackoff << (attempt - 1)
	if d > c.maxBackoff {
		return c.maxBackoff
	}
	return d
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
