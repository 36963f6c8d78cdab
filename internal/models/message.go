// internal/models/message.go
package models

import "time"

// MessageRole identifies who produced a conversation entry.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleWidget    MessageRole = "widget" // system-rendered structured payload
)

// ConversationMessage is one immutable entry in the append-only session log.
// At most one structured payload is set per message.
type ConversationMessage struct {
	ID          string           `json:"id"`
	Role        MessageRole      `json:"role"`
	Content     string           `json:"content"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Offer       *Offer           `json:"offer,omitempty"`
	Comparison  *OfferComparison `json:"comparison,omitempty"`
	Contract    *Contract        `json:"contract,omitempty"`
	Completion  *Completion      `json:"completion,omitempty"`
	DocStatus   *DocStatusUpdate `json:"docStatus,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// DocStatusUpdate is the per-document status payload pushed to the UI when a
// verification resolves.
type DocStatusUpdate struct {
	DocID  string             `json:"docId"`
	Status VerificationStatus `json:"status"`
	Notes  []string           `json:"notes,omitempty"`
}
