package server

import (
	"encoding/json"
	"net/http"

	"github.com/plenumhq/plenum/internal/model"
)

// handleListRules handles GET /v1/rules.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	if rules == nil {
		rules = []*model.QuorumRule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// handlePutRule handles PUT /v1/rules.
func (s *Server) handlePutRule(w http.ResponseWriter, r *http.Request) {
	var rule model.QuorumRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.rules.Put(r.Context(), &rule); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &rule)
}
