package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ripple-chat/internal/config"
	"ripple-chat/internal/handler"
	"ripple-chat/internal/server"
	"ripple-chat/internal/services"
	"ripple-chat/internal/store"
	"ripple-chat/internal/websocket"
	"ripple-chat/pkg/logger"
)

func newTestAPI(t *testing.T) (*httptest.Server, *services.AuthService) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Environment: logger.ProductionMode},
		Auth:   config.AuthConfig{ProviderSecret: "test-secret", Issuer: "test-idp"},
	}
	l := logger.NewNop()

	st := store.New()
	hub := websocket.NewHub(l)

	authService := services.NewAuthService(cfg)
	userService := services.NewUserService(st, nil)
	chatService := services.NewChatService(st, hub)
	messageService := services.NewMessageService(st, hub)
	statusService := services.NewStatusService(st, hub)
	uploadService := services.NewUploadService(nil)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		User:    handler.NewUserHandler(userService),
		Chat:    handler.NewChatHandler(chatService),
		Message: handler.NewMessageHandler(messageService),
		Status:  handler.NewStatusHandler(statusService),
		Upload:  handler.NewUploadHandler(uploadService),
		WS:      websocket.NewHandler(authService, userService, hub),
	}, authService, userService, nil)

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts, authService
}

func doJSON(t *testing.T, ts *httptest.Server, token, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func issueToken(t *testing.T, auth *services.AuthService, uid, name string) string {
	t.Helper()
	token, err := auth.IssueIdentityToken(uid, name, uid+"@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	ts, _ := newTestAPI(t)

	resp, _ := doJSON(t, ts, "", http.MethodGet, "/v1/me", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSyncCreatesUser(t *testing.T) {
	ts, auth := newTestAPI(t)
	token := issueToken(t, auth, "u1", "Alice")

	resp, body := doJSON(t, ts, token, http.MethodPost, "/v1/auth/sync", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	require.Equal(t, "u1", data["uid"])
	require.Equal(t, "Alice", data["display_name"])
}

func TestChatAndMessageFlow(t *testing.T) {
	ts, auth := newTestAPI(t)
	alice := issueToken(t, auth, "u1", "Alice")
	bob := issueToken(t, auth, "u2", "Bob")

	// Both users sync so they exist in the store.
	doJSON(t, ts, alice, http.MethodPost, "/v1/auth/sync", nil)
	resp, body := doJSON(t, ts, bob, http.MethodPost, "/v1/auth/sync", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bobID := int64(body["data"].(map[string]any)["id"].(float64))

	resp, body = doJSON(t, ts, alice, http.MethodPost, "/v1/chats", map[string]any{
		"kind":       "DIRECT",
		"member_ids": []int64{bobID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chatID := int64(body["data"].(map[string]any)["id"].(float64))

	resp, _ = doJSON(t, ts, alice, http.MethodPost, fmt.Sprintf("/v1/chats/%d/messages", chatID), map[string]any{
		"text": "hey bob",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, ts, bob, http.MethodGet, fmt.Sprintf("/v1/chats/%d/messages", chatID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	views := body["data"].([]any)
	require.Len(t, views, 1)

	resp, body = doJSON(t, ts, bob, http.MethodGet, "/v1/chats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chats := body["data"].([]any)
	require.Len(t, chats, 1)
	summary := chats[0].(map[string]any)
	require.Equal(t, float64(1), summary["unread_count"])
	require.Equal(t, "hey bob", summary["chat"].(map[string]any)["last_message"])
}

func TestErrorTaxonomyMapsToDistinctStatusCodes(t *testing.T) {
	ts, auth := newTestAPI(t)
	alice := issueToken(t, auth, "u1", "Alice")
	bob := issueToken(t, auth, "u2", "Bob")
	doJSON(t, ts, alice, http.MethodPost, "/v1/auth/sync", nil)
	resp, body := doJSON(t, ts, bob, http.MethodPost, "/v1/auth/sync", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bobID := int64(body["data"].(map[string]any)["id"].(float64))

	// NotFound
	resp, body = doJSON(t, ts, alice, http.MethodGet, "/v1/chats/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", body["code"])

	// ValidationError: group chat without a name
	resp, body = doJSON(t, ts, alice, http.MethodPost, "/v1/chats", map[string]any{"kind": "GROUP"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_REQUEST", body["code"])

	resp, body = doJSON(t, ts, alice, http.MethodPost, "/v1/chats", map[string]any{
		"kind": "GROUP", "name": "Team", "member_ids": []int64{bobID},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chatID := int64(body["data"].(map[string]any)["id"].(float64))

	// Conflict: duplicate membership
	resp, body = doJSON(t, ts, alice, http.MethodPost, fmt.Sprintf("/v1/chats/%d/members", chatID), map[string]any{
		"user_id": bobID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "CONFLICT", body["code"])
}

func TestStatusFlowOverHTTP(t *testing.T) {
	ts, auth := newTestAPI(t)
	alice := issueToken(t, auth, "u1", "Alice")
	bob := issueToken(t, auth, "u2", "Bob")
	doJSON(t, ts, alice, http.MethodPost, "/v1/auth/sync", nil)
	doJSON(t, ts, bob, http.MethodPost, "/v1/auth/sync", nil)

	resp, body := doJSON(t, ts, alice, http.MethodPost, "/v1/statuses", map[string]any{"text": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	statusID := int64(body["data"].(map[string]any)["id"].(float64))

	resp, _ = doJSON(t, ts, bob, http.MethodPost, fmt.Sprintf("/v1/statuses/%d/view", statusID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, ts, bob, http.MethodGet, "/v1/statuses/feed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := body["data"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	require.Equal(t, float64(1), entry["view_count"])

	// Only the author may list viewers.
	resp, _ = doJSON(t, ts, bob, http.MethodGet, fmt.Sprintf("/v1/statuses/%d/views", statusID), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = doJSON(t, ts, alice, http.MethodGet, fmt.Sprintf("/v1/statuses/%d/views", statusID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["data"].([]any), 1)
}
