// internal/server/server.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	stderrors "finance-intake/internal/common/errors"
	"finance-intake/internal/common/logger"
	"finance-intake/internal/common/validation"
	"finance-intake/internal/intake/flow"
	"finance-intake/internal/intake/session"
	"finance-intake/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the intake engine to the UI collaborator layer.
type Server struct {
	orchestrator *flow.Orchestrator
	sessions     *session.Manager
	logger       logger.Logger
	mux          *http.ServeMux
}

func New(orchestrator *flow.Orchestrator, sessions *session.Manager, log logger.Logger) *Server {
	s := &Server{
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       log.WithFields(map[string]interface{}{"component": "server"}),
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("POST /sessions/{id}/messages", s.handleMessage)
	s.mux.HandleFunc("GET /sessions/{id}/log", s.handleLog)
	s.mux.HandleFunc("PUT /sessions/{id}/documents/{docId}", s.handleAttachDocument)
	s.mux.HandleFunc("DELETE /sessions/{id}/documents/{docId}", s.handleRemoveDocument)
	s.mux.HandleFunc("GET /sessions/{id}/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ==========================
// Handlers
// ==========================

type createSessionRequest struct {
	CustomerType string              `json:"customerType"`
	Order        models.OrderContext `json:"order"`
}

type createSessionResponse struct {
	SessionID string                       `json:"sessionId"`
	CartTotal int                          `json:"cartTotal"`
	Messages  []models.ConversationMessage `json:"messages"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	var req createSessionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	rawOrder, _ := json.Marshal(req.Order)
	result, err := validation.ValidateOrderContext(rawOrder)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "validation unavailable")
		return
	}
	if !result.Valid {
		stdErr := stderrors.NewOrderInvalidError(result.Summary())
		s.writeError(w, http.StatusUnprocessableEntity, stdErr.Details)
		return
	}

	customerType := models.CustomerBusiness
	if strings.EqualFold(req.CustomerType, string(models.CustomerIndividual)) {
		customerType = models.CustomerIndividual
	}

	sess := s.orchestrator.StartSession(req.Order, customerType)
	s.writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: sess.ID,
		CartTotal: sess.CartTotal(),
		Messages:  sess.Log(),
	})
}

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		s.writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.orchestrator.HandleTurn(r.Context(), sess, req.Content)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stage":    string(sess.Stage),
		"messages": sess.Log(),
	})
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stage":    string(sess.Stage),
		"messages": sess.Log(),
	})
}

type attachRequest struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	docID := r.PathValue("docId")

	var req attachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		s.writeError(w, http.StatusBadRequest, "filename is required")
		return
	}

	file := models.FileRef{Name: req.Filename, Size: req.Size}
	if err := s.orchestrator.AttachDocument(r.Context(), sess, docID, file); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, sess.Docs.Get(docID))
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.orchestrator.RemoveDocument(sess, r.PathValue("docId"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Docs.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==========================
// Helpers
// ==========================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
