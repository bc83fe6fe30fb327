// Package crm creates customer contacts in HubSpot.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/domain"
)

const maxErrorBody = 200

// Client talks to the HubSpot contacts API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient builds a client for the given base URL and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned when HubSpot answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hubspot api error (status %d): %s", e.StatusCode, e.Body)
}

type createContactRequest struct {
	Properties []domain.ContactProperty `json:"properties"`
}

// CreateContact creates a new contact. The response body is discarded; only
// transport failures and non-2xx statuses are reported.
func (c *Client) CreateContact(ctx context.Context, props []domain.ContactProperty) error {
	body, err := json.Marshal(createContactRequest{Properties: props})
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}

	endpoint := c.baseURL + "/contacts/v1/contact?" + url.Values{"hapikey": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		bodyStr := string(respBody)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody] + "..."
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: bodyStr}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Debug("hubspot contact created", zap.Int("status", resp.StatusCode))
	return nil
}
