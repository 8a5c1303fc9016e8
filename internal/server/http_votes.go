package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/voting"
)

type markPresenceRequest struct {
	Present       bool   `json:"present"`
	Justification string `json:"justification,omitempty"`
}

// handleMarkPresence handles PUT /v1/sessions/{id}/presence/{legislator}.
func (s *Server) handleMarkPresence(w http.ResponseWriter, r *http.Request) {
	var req markPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.svc.MarkPresence(r.Context(), voting.MarkPresenceInput{
		SessionID:             r.PathValue("id"),
		LegislatorID:          r.PathValue("legislator"),
		Present:               req.Present,
		Justification:         req.Justification,
		Actor:                 actor(r),
		RetroactiveAuthorized: s.retroactiveAuthorized(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleListPresence handles GET /v1/sessions/{id}/presence.
func (s *Server) handleListPresence(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.ListPresence(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list presence")
		return
	}
	if records == nil {
		records = []*model.PresenceRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

type recordBallotsRequest struct {
	ProposalID    string               `json:"proposal_id"`
	Round         int                  `json:"round"`
	Ballots       []voting.BallotInput `json:"ballots"`
	Justification string               `json:"justification,omitempty"`
}

// handleRecordBallots handles POST /v1/sessions/{id}/ballots.
func (s *Server) handleRecordBallots(w http.ResponseWriter, r *http.Request) {
	var req recordBallotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcomes, err := s.svc.RecordBallots(r.Context(), voting.RecordBallotsInput{
		SessionID:             r.PathValue("id"),
		ProposalID:            req.ProposalID,
		Round:                 req.Round,
		Ballots:               req.Ballots,
		Justification:         req.Justification,
		Actor:                 actor(r),
		RetroactiveAuthorized: s.retroactiveAuthorized(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

type finalizeRequest struct {
	ProposalID  string                  `json:"proposal_id"`
	Round       int                     `json:"round"`
	Application model.VotingApplication `json:"application"`
	Note        string                  `json:"note,omitempty"`
}

// handleFinalize handles POST /v1/sessions/{id}/finalize.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.svc.Finalize(r.Context(), voting.FinalizeInput{
		SessionID:             r.PathValue("id"),
		ProposalID:            req.ProposalID,
		Round:                 req.Round,
		Application:           req.Application,
		ResolvedBy:            actor(r),
		Note:                  req.Note,
		RetroactiveAuthorized: s.retroactiveAuthorized(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetAggregation handles GET /v1/aggregations/{proposal}/{round}.
// The session is identified by the required "session" query parameter.
func (s *Server) handleGetAggregation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session query parameter is required")
		return
	}
	round, err := strconv.Atoi(r.PathValue("round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "round must be an integer")
		return
	}

	agg, err := s.svc.GetAggregation(r.Context(), r.PathValue("proposal"), sessionID, round)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}
