// Package chat provisions users, channels and tokens on Stream Chat.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	stream "github.com/GetStream/stream-chat-go/v6"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/domain"
)

// Client adapts the Stream server SDK to the registration flow.
type Client struct {
	sdk      *stream.Client
	apiKey   string
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the SDK at another API host.
func WithBaseURL(baseURL string) Option {
	return func(client *Client) {
		if baseURL != "" {
			client.sdk.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client the SDK sends requests with.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.sdk.SetClient(c)
	}
}

// WithTokenTTL makes customer tokens expire after ttl. Zero means no expiry.
func WithTokenTTL(ttl time.Duration) Option {
	return func(client *Client) {
		client.tokenTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient builds a client authenticated with the server key pair.
func NewClient(apiKey, apiSecret string, timeout time.Duration, opts ...Option) (*Client, error) {
	sdk, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("create stream client: %w", err)
	}
	if timeout > 0 {
		sdk.SetClient(&http.Client{Timeout: timeout})
	}

	c := &Client{
		sdk:    sdk,
		apiKey: apiKey,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIKey returns the public key clients connect with.
func (c *Client) APIKey() string {
	return c.apiKey
}

// UpsertUsers creates or updates the given users in one call.
func (c *Client) UpsertUsers(ctx context.Context, users ...domain.ChatUser) error {
	if len(users) == 0 {
		return nil
	}
	sdkUsers := make([]*stream.User, 0, len(users))
	for _, u := range users {
		sdkUsers = append(sdkUsers, &stream.User{ID: u.ID, Name: u.Name, Role: string(u.Role)})
	}

	start := time.Now()
	_, err := c.sdk.UpsertUsers(ctx, sdkUsers...)
	c.logger.Debug("stream upsert users",
		zap.Int("count", len(sdkUsers)),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err))
	return err
}

// OpenChannel gets or creates the channel with the given members.
func (c *Client) OpenChannel(ctx context.Context, channelType, channelID string, members []string, createdBy string) (*domain.Channel, error) {
	if channelType == "" || channelID == "" {
		return nil, fmt.Errorf("channel type and id are required")
	}

	start := time.Now()
	resp, err := c.sdk.CreateChannel(ctx, channelType, channelID, createdBy, &stream.ChannelRequest{Members: members})
	c.logger.Debug("stream open channel",
		zap.String("cid", channelType+":"+channelID),
		zap.Duration("latency", time.Since(start)),
		zap.Error(err))
	if err != nil {
		return nil, err
	}

	channel := &domain.Channel{Type: channelType, ID: channelID}
	if resp != nil && resp.Channel != nil {
		if resp.Channel.ID != "" {
			channel.ID = resp.Channel.ID
		}
		if resp.Channel.Type != "" {
			channel.Type = resp.Channel.Type
		}
		channel.CID = resp.Channel.CID
		for _, m := range resp.Channel.Members {
			if m != nil {
				channel.Members = append(channel.Members, m.UserID)
			}
		}
	}
	if channel.CID == "" {
		channel.CID = channel.Type + ":" + channel.ID
	}
	return channel, nil
}

// CreateToken signs a client token for userID. No request is made.
func (c *Client) CreateToken(userID string) (string, error) {
	var expire time.Time
	if c.tokenTTL > 0 {
		expire = c.now().Add(c.tokenTTL)
	}
	return c.sdk.CreateToken(userID, expire)
}
