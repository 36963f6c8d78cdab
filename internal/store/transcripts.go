// internal/store/transcripts.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"finance-intake/internal/common/database"
	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/models"
)

// TranscriptStore archives completed-session transcripts in Elasticsearch
// for downstream analytics. Indexing is best effort.
type TranscriptStore struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewTranscriptStore(es *database.ElasticsearchClient, index string, log logger.Logger) *TranscriptStore {
	return &TranscriptStore{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "transcripts"}),
	}
}

type transcriptDoc struct {
	SessionID    string                       `json:"sessionId"`
	MessageCount int                          `json:"messageCount"`
	Messages     []models.ConversationMessage `json:"messages"`
	IndexedAt    time.Time                    `json:"indexedAt"`
}

// IndexTranscript stores the full message log under the session id.
func (s *TranscriptStore) IndexTranscript(ctx context.Context, sessionID string, msgs []models.ConversationMessage) error {
	doc := transcriptDoc{
		SessionID:    sessionID,
		MessageCount: len(msgs),
		Messages:     msgs,
		IndexedAt:    time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return &stderrors.StandardError{
			Code:      stderrors.ErrCodeTranscriptIndexError,
			Message:   "Failed to marshal transcript",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	if err := s.es.Index(ctx, s.index, sessionID, bytes.NewReader(body)); err != nil {
		return &stderrors.StandardError{
			Code:      stderrors.ErrCodeTranscriptIndexError,
			Message:   "Failed to index transcript",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}

	s.logger.Info("transcript indexed", map[string]interface{}{
		"sessionId": sessionID,
		"messages":  len(msgs),
	})
	return nil
}
