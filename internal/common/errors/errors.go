// Package errors provides standardized error handling for the intake engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Conversation-level, always recoverable in place.
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnrecognizedReply  ErrorCode = "UNRECOGNIZED_REPLY"
	ErrCodeStageNotReady      ErrorCode = "STAGE_NOT_READY"
	ErrCodeUnknownDocumentID  ErrorCode = "UNKNOWN_DOCUMENT_ID"
	ErrCodeDocumentRejected   ErrorCode = "DOCUMENT_REJECTED"
	ErrCodeDocumentProcessing ErrorCode = "DOCUMENT_PROCESSING"

	// External collaborators, degrade to fallback behavior.
	ErrCodeResponderUnavailable ErrorCode = "RESPONDER_UNAVAILABLE"
	ErrCodeResponderTimeout     ErrorCode = "RESPONDER_TIMEOUT"
	ErrCodeRecordInsertFailed   ErrorCode = "RECORD_INSERT_FAILED"
	ErrCodeTranscriptIndexError ErrorCode = "TRANSCRIPT_INDEX_ERROR"
	ErrCodeNotificationFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Session lifecycle.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeOrderInvalid    ErrorCode = "ORDER_CONTEXT_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError marks malformed user input; the prompt is re-issued.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Invalid value for %s", field),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnrecognizedReplyError marks free text that matched no accepted pattern.
func NewUnrecognizedReplyError(promptKind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnrecognizedReply,
		Message:   "Reply did not match any accepted pattern",
		Retryable: true,
		Metadata:  map[string]interface{}{"promptKind": promptKind},
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError covers lookups of expired or unknown sessions.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   sessionID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderInvalidError covers order-context payloads failing schema checks.
func NewOrderInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderInvalid,
		Message:   "Order context failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownDocumentError covers uploads against an unregistered document id.
func NewUnknownDocumentError(docID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownDocumentID,
		Message:   "Unknown document type",
		Details:   docID,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponderUnavailableError creates a retryable external responder error.
func NewResponderUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponderUnavailable,
		Message:   "External responder unavailable",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponderTimeoutError creates a retryable responder timeout error.
func NewResponderTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponderTimeout,
		Message:   "External responder timed out",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordInsertError creates a retryable persistence error. Record inserts
// are best-effort side writes; the conversation proceeds regardless.
func NewRecordInsertError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordInsertFailed,
		Message:   "Failed to insert application record",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationError creates a retryable notification error.
func NewNotificationError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationFailed,
		Message:   "Failed to send confirmation notification",
		Details:   errDetails(err),
		Retryable: true,
		Metadata:  map[string]interface{}{"channel": channel},
		Timestamp: time.Now().UTC(),
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsRecoverableInPlace reports whether the error resolves by re-issuing the
// current prompt rather than by any fallback path.
func IsRecoverableInPlace(code ErrorCode) bool {
	switch code {
	case ErrCodeValidationFailed, ErrCodeUnrecognizedReply:
		return true
	}
	return false
}

// GetErrorCategory buckets codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeUnrecognizedReply:
		return "user_input"
	case ErrCodeDocumentRejected, ErrCodeDocumentProcessing, ErrCodeUnknownDocumentID:
		return "document"
	case ErrCodeResponderUnavailable, ErrCodeResponderTimeout:
		return "responder"
	case ErrCodeRecordInsertFailed, ErrCodeTranscriptIndexError, ErrCodeNotificationFailed:
		return "side_write"
	default:
		return "session"
	}
}
