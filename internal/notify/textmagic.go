package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TextMagicConfig configures the TextMagic REST v2 client.
type TextMagicConfig struct {
	Username string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultTextMagicConfig returns sensible defaults.
func DefaultTextMagicConfig(username, apiKey string) TextMagicConfig {
	return TextMagicConfig{
		Username: username,
		APIKey:   apiKey,
		BaseURL:  "https://rest.textmagic.com",
		Timeout:  30 * time.Second,
	}
}

// TextMagicClient implements Sender against the TextMagic REST v2 API.
type TextMagicClient struct {
	username   string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTextMagicClient creates a client with default config.
func NewTextMagicClient(username, apiKey string) *TextMagicClient {
	return NewTextMagicClientWithConfig(DefaultTextMagicConfig(username, apiKey))
}

// NewTextMagicClientWithConfig creates a client with custom config. A
// custom BaseURL is mainly useful in tests.
func NewTextMagicClientWithConfig(config TextMagicConfig) *TextMagicClient {
	return &TextMagicClient{
		username: config.Username,
		apiKey:   config.APIKey,
		baseURL:  config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type textMagicRequest struct {
	Phones string `json:"phones"`
	Text   string `json:"text"`
}

// Send posts one message. Non-2xx responses come back as errors with the
// provider's message attached; the caller decides what to do with them.
func (c *TextMagicClient) Send(ctx context.Context, phone, text string) error {
	if c.username == "" || c.apiKey == "" {
		return fmt.Errorf("textmagic credentials not configured")
	}

	body, err := json.Marshal(textMagicRequest{Phones: phone, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-TM-Username", c.username)
	req.Header.Set("X-TM-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("textmagic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("textmagic returned %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
