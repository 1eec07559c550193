package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/events"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/logging"
)

type fakeAssistant struct {
	mu      sync.Mutex
	lastReq assistant.ChatRequest
	cleared []string
	resp    assistant.ChatResponse
}

func (f *fakeAssistant) Chat(_ context.Context, req assistant.ChatRequest) assistant.ChatResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	return f.resp
}

func (f *fakeAssistant) ClearContext(id string) assistant.ClearResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, id)
	return assistant.ClearResult{Success: true}
}

func (f *fakeAssistant) Catalog() *catalog.Catalog { return catalog.Default() }

type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func (f *fakeSettings) Get(_ context.Context, key, def string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if v := f.values[key]; v != "" {
		return v, nil
	}
	return def, nil
}

func (f *fakeSettings) SetSetting(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeAssistant, *fakeSettings, *events.EventBus) {
	t.Helper()
	a := &fakeAssistant{resp: assistant.ChatResponse{Message: "hi", Success: true}}
	st := &fakeSettings{values: map[string]string{}}
	bus := events.New(16)
	t.Cleanup(bus.Close)

	srv := NewServer(a, st, bus,
		WithLogger(logging.NewNop().Logger),
		WithSessionCount(func() int { return 3 }),
	)
	return srv, a, st, bus
}

func do(t *testing.T, srv *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 3, body["sessions"])
	assert.Contains(t, body, "uptime")
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()
	srv, a, _, _ := newTestServer(t)
	a.resp = assistant.ChatResponse{
		Message: "Opening it.",
		Action:  &assistant.Action{Name: "navigateToWorkspace", Parameters: map[string]any{"workspaceSlug": "acme"}},
		Success: true,
	}

	rec := do(t, srv, http.MethodPost, "/api/v1/ai-chat/chat",
		`{"message":"open acme","history":[{"role":"user","content":"hi"}],"currentOrganizationId":"org-1"}`,
		map[string]string{SessionHeader: "tab-7"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"message":"Opening it.","action":{"name":"navigateToWorkspace","parameters":{"workspaceSlug":"acme"}},"success":true}`,
		rec.Body.String())

	assert.Equal(t, "open acme", a.lastReq.Message)
	assert.Equal(t, "tab-7", a.lastReq.SessionID)
	assert.Equal(t, "org-1", a.lastReq.CurrentOrganizationID)
	assert.Len(t, a.lastReq.History, 1)
}

func TestChatEndpoint_FailureIsInBody(t *testing.T) {
	t.Parallel()
	srv, a, _, _ := newTestServer(t)
	a.resp = assistant.ChatResponse{Success: false, Error: assistant.MsgAIDisabled}

	rec := do(t, srv, http.MethodPost, "/api/v1/ai-chat/chat", `{"message":"hi","sessionId":"s1"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"","success":false,"error":"AI chat is currently disabled. Please enable it in settings."}`, rec.Body.String())
	assert.Equal(t, "s1", a.lastReq.SessionID)
}

func TestChatEndpoint_InvalidBody(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/ai-chat/chat", `{"message":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearContextEndpoint(t *testing.T) {
	t.Parallel()
	srv, a, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/v1/ai-chat/context/clear", `{"sessionId":"s1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/v1/ai-chat/context/clear", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"s1", ""}, a.cleared)
}

func TestListCommandsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/v1/ai-chat/commands", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cmds []commandResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cmds))
	require.Len(t, cmds, catalog.Default().Len())
	assert.Equal(t, "listWorkspaces", cmds[0].Name)
	assert.Empty(t, cmds[0].Required)

	var createProject commandResponse
	for _, c := range cmds {
		if c.Name == "createProject" {
			createProject = c
		}
	}
	assert.Equal(t, []string{"workspaceSlug", "name"}, createProject.Required)
	assert.Equal(t, []string{"description"}, createProject.Optional)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = do(t, srv, http.MethodGet, "/api/v1/ai-chat/commands", "", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()
	srv, _, st, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/v1/settings/ai_api_key", `{"value":"sk-or-v1-secretvalue1234"}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "sk-or-v1-secretvalue1234", st.values["ai_api_key"])

	rec = do(t, srv, http.MethodGet, "/api/v1/settings/ai_api_key", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"key":"ai_api_key","value":"********1234","set":true}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/v1/settings/ai_model", "", nil)
	assert.JSONEq(t, `{"key":"ai_model","value":"","set":false}`, rec.Body.String())
}

func TestSettingsEndpoints_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown key get", http.MethodGet, "/api/v1/settings/password", "", http.StatusNotFound},
		{"unknown key put", http.MethodPut, "/api/v1/settings/password", `{"value":"x"}`, http.StatusNotFound},
		{"missing value", http.MethodPut, "/api/v1/settings/ai_model", `{}`, http.StatusBadRequest},
		{"bad enabled flag", http.MethodPut, "/api/v1/settings/ai_enabled", `{"value":"yes"}`, http.StatusUnprocessableEntity},
		{"bad api url", http.MethodPut, "/api/v1/settings/ai_api_url", `{"value":"openrouter.ai"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _, _, _ := newTestServer(t)
			rec := do(t, srv, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestSettingsEndpoints_StoreFailure(t *testing.T) {
	t.Parallel()
	srv, _, st, _ := newTestServer(t)
	st.err = errors.New("disk gone")

	rec := do(t, srv, http.MethodGet, "/api/v1/settings/ai_model", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestEventsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _, _, bus := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events?session=s1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	_, _ = r.ReadString('\n') // data
	_, _ = r.ReadString('\n') // blank
	bus.Publish(events.NewChatContextClearedEvent("s1"))

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: chat_context_cleared\n", line)
}

func TestHTTPStatusForDomainError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantOK     bool
	}{
		{"validation", core.ErrValidation("BAD_INPUT", "bad"), http.StatusUnprocessableEntity, true},
		{"not found", core.ErrNotFound("workspace", "x"), http.StatusNotFound, true},
		{"config", core.ErrConfig(core.CodeAIDisabled, "off"), http.StatusServiceUnavailable, true},
		{"auth", core.ErrAuth("bad key"), http.StatusUnauthorized, true},
		{"rate limit", core.ErrRateLimit("slow down"), http.StatusTooManyRequests, true},
		{"budget", core.ErrBudget("no credits"), http.StatusPaymentRequired, true},
		{"provider", core.ErrProvider(500, "upstream"), http.StatusBadGateway, true},
		{"network", core.ErrNetwork("unreachable"), http.StatusBadGateway, true},
		{"non-domain error", errors.New("plain"), 0, false},
		{"nil error", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := httpStatusForDomainError(tt.err)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}
