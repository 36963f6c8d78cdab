// internal/common/errors/handler.go
package errors

import "time"

// Recovery is what the conversation does about an error: a user-facing line
// plus whether the pending prompt should be re-issued. There is no fatal
// path in the core; every code maps to some Recovery.
type Recovery struct {
	UserMessage string
	Reprompt    bool
}

// Logger is the minimal logging surface the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Handler normalizes arbitrary errors into conversational recoveries.
type Handler struct {
	logger Logger
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Recover normalizes err and returns the recovery to apply. Side-write
// failures are logged and swallowed (empty user message).
func (h *Handler) Recover(err error) Recovery {
	stdErr := h.normalize(err)

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
	}

	switch GetErrorCategory(stdErr.Code) {
	case "user_input":
		h.logger.Warn("input rejected, re-issuing prompt", fields)
		return Recovery{
			UserMessage: "Sorry, I didn't catch that. " + stdErr.Details,
			Reprompt:    true,
		}
	case "responder":
		h.logger.Warn("responder degraded to fallback", fields)
		return Recovery{
			UserMessage: "I'm not sure about that one. Would you like to talk to a sales representative?",
		}
	case "side_write":
		h.logger.Error("side write failed", fields)
		return Recovery{}
	case "document":
		h.logger.Warn("document gate", fields)
		return Recovery{UserMessage: stdErr.Message}
	default:
		h.logger.Error("session error", fields)
		return Recovery{UserMessage: stdErr.Message}
	}
}

// normalize ensures we always have a StandardError.
func (h *Handler) normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
