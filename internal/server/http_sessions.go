package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/voting"
)

type createSessionRequest struct {
	Name        string    `json:"name"`
	SeatCount   int       `json:"seat_count"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// handleCreateSession handles POST /v1/sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.svc.CreateSession(r.Context(), voting.CreateSessionInput{
		Name:        req.Name,
		SeatCount:   req.SeatCount,
		ScheduledAt: req.ScheduledAt,
		Actor:       actor(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleListSessions handles GET /v1/sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleGetSession handles GET /v1/sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type transitionRequest struct {
	To model.SessionState `json:"to"`
}

// handleTransitionSession handles POST /v1/sessions/{id}/transition.
func (s *Server) handleTransitionSession(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.svc.TransitionSession(r.Context(), voting.TransitionInput{
		SessionID: r.PathValue("id"),
		To:        req.To,
		Actor:     actor(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleListAudit handles GET /v1/sessions/{id}/audit.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.ListAudit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit trail")
		return
	}
	if entries == nil {
		entries = []*model.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
