package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopassist/internal/logger"
	syncer "shopassist/internal/sync"
)

type fakeMessenger struct {
	sendCalls   []string
	streamCalls []string
	resp        map[string]interface{}
	err         error
	frames      string
	lastPayload map[string]interface{}
}

func (f *fakeMessenger) Send(endpoint string, payload map[string]interface{}) (map[string]interface{}, error) {
	f.sendCalls = append(f.sendCalls, endpoint)
	f.lastPayload = payload
	return f.resp, f.err
}

func (f *fakeMessenger) Stream(endpoint string, payload map[string]interface{}, sink syncer.StreamSink) {
	f.streamCalls = append(f.streamCalls, endpoint)
	f.lastPayload = payload
	sink.Write([]byte(f.frames))
	sink.Flush()
}

func (f *fakeMessenger) StoreURL() string { return "https://store.test" }

type toggle bool

func (t toggle) Enabled() bool { return bool(t) }

func newChatRouter(m *fakeMessenger, enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(m, toggle(enabled), logger.New("error"))
	r := gin.New()
	r.POST("/chat", h.Chat)
	r.POST("/chat/stream", h.ChatStream)
	r.POST("/chat/history", h.History)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEmptyMessage(t *testing.T) {
	m := &fakeMessenger{}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat", gin.H{"message": "", "session_id": "s1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Message is required")
	assert.Empty(t, m.sendCalls, "validation failures must not reach the remote API")
}

func TestChatGeneratesSessionIDWhenMissing(t *testing.T) {
	m := &fakeMessenger{resp: map[string]interface{}{"success": true}}
	r := newChatRouter(m, true)

	postJSON(r, "/chat", gin.H{"message": "hi"})

	require.Equal(t, []string{"/chat"}, m.sendCalls)
	sessionID, _ := m.lastPayload["session_id"].(string)
	assert.NotEmpty(t, sessionID)
}

func TestChatRelaysResponseVerbatim(t *testing.T) {
	m := &fakeMessenger{resp: map[string]interface{}{"success": true, "response": "Hello!", "session_id": "s1"}}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat", gin.H{"message": "hi", "session_id": "s1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"response":"Hello!","session_id":"s1"}`, w.Body.String())
	require.Equal(t, []string{"/chat"}, m.sendCalls)
	assert.Equal(t, "openai", m.lastPayload["ai_model"])
	assert.Equal(t, "https://store.test", m.lastPayload["store_url"])
}

func TestChatUpstreamFailure(t *testing.T) {
	m := &fakeMessenger{err: syncer.ErrUnauthorized}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat", gin.H{"message": "hi"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestChatDisabled(t *testing.T) {
	m := &fakeMessenger{}
	r := newChatRouter(m, false)

	w := postJSON(r, "/chat", gin.H{"message": "hi"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, m.sendCalls)
}

func TestChatStreamEmptyMessage(t *testing.T) {
	m := &fakeMessenger{}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/stream", gin.H{"message": ""})

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "data: "), "single error frame instead of a stream")
	assert.Contains(t, body, "Message is required")
	assert.Empty(t, m.streamCalls)
}

func TestChatStreamRelaysFrames(t *testing.T) {
	m := &fakeMessenger{frames: "data: {\"type\":\"token\",\"content\":\"Hi\"}\n\ndata: {\"type\":\"done\"}\n\n"}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/stream", gin.H{"message": "hi", "session_id": "s1"})

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, m.frames, w.Body.String())
	require.Equal(t, []string{"/chat/stream"}, m.streamCalls)
	assert.Equal(t, "openai", m.lastPayload["ai_model"])
}

func TestChatStreamMalformedBody(t *testing.T) {
	m := &fakeMessenger{}
	r := newChatRouter(m, true)

	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, m.streamCalls)
	assert.NotContains(t, w.Body.String(), "Message is required")
}

func TestHistoryEmptySession(t *testing.T) {
	m := &fakeMessenger{}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/history", gin.H{"session_id": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Session ID is required")
	assert.Empty(t, m.sendCalls)
}

func TestHistoryRelaysMessages(t *testing.T) {
	m := &fakeMessenger{resp: map[string]interface{}{
		"success":  true,
		"messages": []interface{}{map[string]interface{}{"type": "user", "message": "hi"}},
	}}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/history", gin.H{"session_id": "s1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messages"`)
	require.Equal(t, []string{"/chat/history"}, m.sendCalls)
}

func TestHistoryNullUpstreamBody(t *testing.T) {
	m := &fakeMessenger{} // nil response, nil error
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/history", gin.H{"session_id": "s1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to retrieve chat history")
}

func TestHistoryGarbledUpstream(t *testing.T) {
	m := &fakeMessenger{err: syncer.ErrInvalidResponse}
	r := newChatRouter(m, true)

	w := postJSON(r, "/chat/history", gin.H{"session_id": "s1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to retrieve chat history")
}
