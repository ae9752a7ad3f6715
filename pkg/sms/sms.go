// Package sms sends text messages through an HTTP SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Config holds gateway settings.
type Config struct {
	GatewayURL    string
	APIToken      string
	SenderID      string
	DefaultRegion string
	Timeout       time.Duration
}

// Client posts messages to the configured gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type message struct {
	Target  string `json:"target"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

// NewClient creates a gateway client. A zero timeout defaults to 10s.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether a gateway URL and token are present.
func (c *Client) Configured() bool {
	return c.cfg.GatewayURL != "" && c.cfg.APIToken != ""
}

// Send delivers text to phone. The number is normalised to E.164 first.
func (c *Client) Send(ctx context.Context, phone, text string) error {
	if !c.Configured() {
		return fmt.Errorf("sms: gateway is not configured")
	}
	target, err := NormalizePhone(phone, c.cfg.DefaultRegion)
	if err != nil {
		return err
	}

	body, err := json.Marshal(message{Target: target, Message: text, Sender: c.cfg.SenderID})
	if err != nil {
		return fmt.Errorf("sms: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.cfg.APIToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms: gateway returned status %d", resp.StatusCode)
	}
	return nil
}
