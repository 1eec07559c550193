package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
)

func TestClient_Complete_Success(t *testing.T) {
	t.Parallel()

	type captured struct {
		path, auth string
		body       map[string]any
	}
	seen := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{path: r.URL.Path, auth: r.Header.Get("Authorization")}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &c.body)
		seen <- c
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[COMMAND: listWorkspaces] {}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()))
	text, err := c.Complete(context.Background(), Custom, Params{
		BaseURL:  srv.URL,
		Model:    "m",
		APIKey:   "k",
		Messages: []core.Message{{Role: core.RoleUser, Content: "show workspaces"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "[COMMAND: listWorkspaces] {}", text)
	got := <-seen
	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer k", got.auth)
	assert.Equal(t, "m", got.body["model"])
}

func TestClient_Complete_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		category core.ErrorCategory
		message  string
	}{
		{"unauthorized", 401, `{}`, core.ErrCatAuth, MsgInvalidAPIKey},
		{"rate limited", 429, `{}`, core.ErrCatRateLimit, MsgRateLimited},
		{"payment required", 402, `{}`, core.ErrCatBudget, MsgInsufficientCredits},
		{"provider message", 400, `{"error":{"message":"model not found"}}`, core.ErrCatProvider, "model not found"},
		{"flat provider message", 400, `{"error":"bad request body"}`, core.ErrCatProvider, "bad request body"},
		{"generic", 503, `upstream down`, core.ErrCatProvider, "API request failed with status 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(WithHTTPClient(srv.Client()))
			_, err := c.Complete(context.Background(), OpenAI, Params{BaseURL: srv.URL})

			require.Error(t, err)
			assert.Equal(t, tt.category, core.GetCategory(err))
			assert.Equal(t, tt.message, core.UserMessage(err, ""))
		})
	}
}

func TestClient_Complete_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(WithHTTPClient(&http.Client{Timeout: time.Second}))
	_, err := c.Complete(context.Background(), Custom, Params{BaseURL: url})

	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNetwork))
	assert.Equal(t, MsgNetwork, core.UserMessage(err, ""))
}

func TestClient_Complete_LocalRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	limiters := NewLimiters(RateLimiterConfig{MaxTokens: 1, RefillRate: 0.001})
	c := NewClient(WithHTTPClient(srv.Client()), WithLimiters(limiters))

	_, err := c.Complete(context.Background(), Custom, Params{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Custom, Params{BaseURL: srv.URL})
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatRateLimit))
	assert.Equal(t, int32(1), calls.Load(), "second call must not reach the provider")
}

func TestClient_Complete_EmptyTextIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()))
	text, err := c.Complete(context.Background(), Anthropic, Params{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Empty(t, text)
}
