// internal/intake/qa/external.go
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	appcfg "finance-intake/internal/common/config"
	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"

	"github.com/sony/gobreaker/v2"
)

// HTTPResponder talks to the external generic Q&A service. Calls run behind
// a circuit breaker so a flapping responder degrades to the fixed fallback
// instead of stacking up timeouts.
type HTTPResponder struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	breaker    *gobreaker.CircuitBreaker[Answer]
	logger     logger.Logger
}

func NewHTTPResponder(cfg appcfg.ResponderConfig, log logger.Logger) *HTTPResponder {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond

	breaker := gobreaker.NewCircuitBreaker[Answer](gobreaker.Settings{
		Name:        "qa-responder",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 >= counts.Requests
		},
	})

	return &HTTPResponder{
		baseURL:    cfg.BaseURL,
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		breaker:    breaker,
		logger:     log.WithFields(map[string]interface{}{"component": "qa-external"}),
	}
}

type askRequest struct {
	Question string                 `json:"question"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

type askResponse struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Ask posts the question to the responder, retrying transient failures with
// exponential backoff inside the breaker.
func (h *HTTPResponder) Ask(ctx context.Context, question string, qctx map[string]interface{}) (Answer, error) {
	return h.breaker.Execute(func() (Answer, error) {
		return h.ask(ctx, question, qctx)
	})
}

func (h *HTTPResponder) ask(ctx context.Context, question string, qctx map[string]interface{}) (Answer, error) {
	body, _ := json.Marshal(askRequest{Question: question, Context: qctx})

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return Answer{}, stderrors.NewResponderTimeoutError(ctx.Err())
			}
		}

		answer, err := h.askOnce(ctx, body)
		if err == nil {
			return answer, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return Answer{}, stderrors.NewResponderTimeoutError(err)
		}
		lastErr = err
	}

	return Answer{}, stderrors.NewResponderUnavailableError(lastErr)
}

func (h *HTTPResponder) askOnce(ctx context.Context, body []byte) (Answer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/qa/ask", bytes.NewReader(body))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Answer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Answer{}, fmt.Errorf("responder returned %d", resp.StatusCode)
	}

	var parsed askResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Answer{}, err
	}
	return Answer{Message: parsed.Message, Suggestions: parsed.Suggestions}, nil
}
