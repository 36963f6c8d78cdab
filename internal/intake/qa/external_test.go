// internal/intake/qa/external_test.go
package qa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"finance-intake/internal/common/config"
	"finance-intake/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExternal(t *testing.T, baseURL string, maxRetries int) *HTTPResponder {
	return NewHTTPResponder(config.ResponderConfig{
		BaseURL:    baseURL,
		Timeout:    1000,
		MaxRetries: maxRetries,
	}, logger.NewTestLogger(t))
}

func TestHTTPResponder_Ask_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/qa/ask", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req askRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "do you ship internationally?", req.Question)

		json.NewEncoder(w).Encode(askResponse{
			Message:     "We ship to the continental US only.",
			Suggestions: []string{"Continue application"},
		})
	}))
	defer ts.Close()

	r := newExternal(t, ts.URL, 0)
	answer, err := r.Ask(context.Background(), "do you ship internationally?", map[string]interface{}{"stage": "info"})

	require.NoError(t, err)
	assert.Equal(t, "We ship to the continental US only.", answer.Message)
	assert.Equal(t, []string{"Continue application"}, answer.Suggestions)
}

func TestHTTPResponder_Ask_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(askResponse{Message: "recovered"})
	}))
	defer ts.Close()

	r := newExternal(t, ts.URL, 2)
	answer, err := r.Ask(context.Background(), "anything", nil)

	require.NoError(t, err)
	assert.Equal(t, "recovered", answer.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPResponder_Ask_ExhaustedRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	r := newExternal(t, ts.URL, 1)
	_, err := r.Ask(context.Background(), "anything", nil)

	require.Error(t, err)
}

func TestHTTPResponder_Ask_CanceledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(askResponse{Message: "too late"})
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newExternal(t, ts.URL, 0)
	_, err := r.Ask(ctx, "anything", nil)

	require.Error(t, err)
}
