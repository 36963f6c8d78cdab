// internal/server/server_test.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finance-intake/internal/common/logger"
	"finance-intake/internal/intake/documents"
	"finance-intake/internal/intake/flow"
	"finance-intake/internal/intake/prompt"
	"finance-intake/internal/intake/qa"
	"finance-intake/internal/intake/session"
	"finance-intake/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	log := logger.NewTestLogger(t)
	sessions := session.NewManager()
	responder := qa.NewResponder(nil, nil, log)

	orchestrator := flow.NewOrchestrator(
		flow.Config{
			Documents: documents.Config{
				Delay:   5 * time.Millisecond,
				Timeout: time.Second,
				Seed:    42,
			},
			Prompt: prompt.Config{},
		},
		sessions,
		responder,
		nil, nil, nil, nil,
		log,
	)

	ts := httptest.NewServer(New(orchestrator, sessions, log).Handler())
	t.Cleanup(ts.Close)
	return ts, sessions
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, body := postJSON(t, ts.URL+"/sessions",
		`{"customerType":"business","order":{"items":[{"name":"E-Bike Pro","price":2000,"quantity":1}]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var id string
	require.NoError(t, json.Unmarshal(body["sessionId"], &id))
	require.NotEmpty(t, id)
	return id
}

// ==========================
// Session Endpoint Tests
// ==========================

func TestServer_CreateSession(t *testing.T) {
	ts, sessions := newTestServer(t)

	resp, body := postJSON(t, ts.URL+"/sessions",
		`{"customerType":"business","order":{"items":[{"name":"E-Bike Pro","price":2000,"quantity":2}]}}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cartTotal int
	require.NoError(t, json.Unmarshal(body["cartTotal"], &cartTotal))
	assert.Equal(t, 4_000, cartTotal)

	var id string
	require.NoError(t, json.Unmarshal(body["sessionId"], &id))
	s, err := sessions.Get(id)
	require.NoError(t, err)
	assert.Equal(t, session.StageInfo, s.Stage)
	assert.NotEmpty(t, s.Log(), "greeting and first question expected")
}

func TestServer_CreateSession_InvalidOrder(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty items", body: `{"order":{"items":[]}}`},
		{name: "missing items", body: `{"order":{}}`},
		{name: "negative price", body: `{"order":{"items":[{"name":"x","price":-1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+"/sessions", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, string(body["error"]), ":")
		})
	}
}

func TestServer_CreateSession_MalformedJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, _ := postJSON(t, ts.URL+"/sessions", `{broken`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_PostMessage(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp, body := postJSON(t, fmt.Sprintf("%s/sessions/%s/messages", ts.URL, id),
		`{"content":"Acme Robotics LLC"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stage string
	require.NoError(t, json.Unmarshal(body["stage"], &stage))
	assert.Equal(t, "info", stage)

	var messages []models.ConversationMessage
	require.NoError(t, json.Unmarshal(body["messages"], &messages))
	assert.GreaterOrEqual(t, len(messages), 3)
}

func TestServer_PostMessage_EmptyContent(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp, _ := postJSON(t, fmt.Sprintf("%s/sessions/%s/messages", ts.URL, id), `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_UnknownSession(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := postJSON(t, ts.URL+"/sessions/nope/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_GetLog(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp, err := http.Get(fmt.Sprintf("%s/sessions/%s/log", ts.URL, id))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ==========================
// Document Endpoint Tests
// ==========================

func TestServer_AttachAndRemoveDocument(t *testing.T) {
	ts, sessions := newTestServer(t)
	id := createSession(t, ts)

	url := fmt.Sprintf("%s/sessions/%s/documents/businessLicense", ts.URL, id)
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(`{"filename":"business-license.pdf","size":2048}`))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	s, err := sessions.Get(id)
	require.NoError(t, err)
	s.Docs.Wait()
	attached := s.Docs.Get("businessLicense")
	assert.Equal(t, models.DocVerified, attached.Status())

	del, err := http.NewRequest(http.MethodDelete, url, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(del)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	removed := s.Docs.Get("businessLicense")
	assert.Equal(t, models.DocAbsent, removed.Status())
}

func TestServer_AttachDocument_UnknownType(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	url := fmt.Sprintf("%s/sessions/%s/documents/passport", ts.URL, id)
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(`{"filename":"passport.pdf"}`))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ==========================
// Operational Endpoint Tests
// ==========================

func TestServer_Healthz(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
