// internal/intake/session/session.go
package session

import (
	"sync"
	"time"

	"finance-intake/internal/intake/documents"
	"finance-intake/internal/models"

	"github.com/google/uuid"
)

// Stage is the top-level lifecycle position of a session.
type Stage string

const (
	StageInfo      Stage = "info"
	StageOffers    Stage = "offers"
	StageDocuments Stage = "documents"
	StageContract  Stage = "contract"
	StageComplete  Stage = "complete"
)

// Session owns one conversation: the applicant profile, the append-only
// message log and the macro stage. Nothing in here is shared across
// sessions. Turn handling is serialized by the owner via Lock/Unlock; the
// message log carries its own lock so asynchronous document updates can
// append mid-turn.
type Session struct {
	ID        string
	Order     models.OrderContext
	CreatedAt time.Time

	turnMu  sync.Mutex
	Profile *models.ApplicantProfile
	Stage   Stage

	// Offer selection state while in the offers stage.
	CurrentOffer   *models.Offer
	Contract       *models.Contract
	AwaitingReject bool // soft gate: a rejected doc needs explicit confirmation

	// Docs is this session's verification pipeline, wired in by the flow
	// orchestrator at session start.
	Docs *documents.Pipeline

	logMu sync.Mutex
	log   []models.ConversationMessage
}

func New(order models.OrderContext, customerType models.CustomerType) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Order:     order,
		CreatedAt: time.Now().UTC(),
		Profile:   &models.ApplicantProfile{CustomerType: customerType},
		Stage:     StageInfo,
	}
}

// Lock serializes one conversation turn.
func (s *Session) Lock() { s.turnMu.Lock() }

// Unlock releases the turn lock.
func (s *Session) Unlock() { s.turnMu.Unlock() }

// CartTotal is fixed at session creation.
func (s *Session) CartTotal() int {
	return s.Order.CartTotal()
}

// Append adds a message to the log. Consecutive assistant messages with
// byte-identical content collapse to one entry: the last message is never
// repeated verbatim.
func (s *Session) Append(msg models.ConversationMessage) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if msg.Role == models.RoleAssistant && len(s.log) > 0 {
		last := s.log[len(s.log)-1]
		if last.Role == models.RoleAssistant && last.Content == msg.Content && msg.Content != "" {
			return
		}
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.log = append(s.log, msg)
}

// AppendUser records the raw user reply.
func (s *Session) AppendUser(content string) {
	s.Append(models.ConversationMessage{Role: models.RoleUser, Content: content})
}

// AppendAssistant records a plain assistant line with optional quick
// replies.
func (s *Session) AppendAssistant(content string, suggestions ...string) {
	s.Append(models.ConversationMessage{
		Role:        models.RoleAssistant,
		Content:     content,
		Suggestions: suggestions,
	})
}

// Log returns a copy of the message log.
func (s *Session) Log() []models.ConversationMessage {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	out := make([]models.ConversationMessage, len(s.log))
	copy(out, s.log)
	return out
}
