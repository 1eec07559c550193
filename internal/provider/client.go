package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
)

// User-facing provider failure messages.
const (
	MsgInvalidAPIKey       = "Invalid API key. Please check your AI API key in settings."
	MsgRateLimited         = "Rate limit exceeded by API provider. Please try again in a moment."
	MsgInsufficientCredits = "Insufficient credits. Please check your AI provider account."
	MsgNetwork             = "Network error. Please check your internet connection."
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 4 << 20

// Client sends completion requests to a provider endpoint.
type Client struct {
	httpClient *http.Client
	limiters   *Limiters
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiters enables local per-provider rate limiting.
func WithLimiters(l *Limiters) ClientOption {
	return func(c *Client) {
		c.limiters = l
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a provider client. There is no retry: a failed call
// ends the chat turn.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends one completion request and returns the assistant text.
// A response without text yields an empty string and no error.
func (c *Client) Complete(ctx context.Context, kind Kind, p Params) (string, error) {
	if c.limiters != nil && !c.limiters.Get(kind).TryAcquire() {
		c.logger.Warn("local provider rate limit reached", slog.String("provider", string(kind)))
		return "", core.ErrRateLimit(MsgRateLimited).WithDetail("local", true)
	}

	req, err := BuildRequest(kind, p)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return "", core.ErrNetwork(MsgNetwork).WithCause(err)
	}
	httpReq.Header = req.Header

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("provider request failed",
			slog.String("provider", string(kind)),
			slog.String("error", err.Error()),
		)
		return "", core.ErrNetwork(MsgNetwork).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", core.ErrNetwork(MsgNetwork).WithCause(err)
	}

	c.logger.Debug("provider responded",
		slog.String("provider", string(kind)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", StatusError(resp.StatusCode, raw)
	}

	return ExtractText(kind, raw), nil
}

// StatusError maps a non-success HTTP status to a domain error with a
// user-facing message.
func StatusError(status int, raw []byte) *core.DomainError {
	switch status {
	case http.StatusUnauthorized:
		return core.ErrAuth(MsgInvalidAPIKey)
	case http.StatusTooManyRequests:
		return core.ErrRateLimit(MsgRateLimited)
	case http.StatusPaymentRequired:
		return core.ErrBudget(MsgInsufficientCredits)
	}

	if msg := providerErrorMessage(raw); msg != "" {
		return core.ErrProvider(status, msg)
	}
	return core.ErrProvider(status, fmt.Sprintf("API request failed with status %d", status))
}

// providerErrorMessage reads {"error":{"message":...}}, the shape shared by
// all supported vendors, or a bare {"error":"..."}.
func providerErrorMessage(raw []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat.Error
	}
	return ""
}
