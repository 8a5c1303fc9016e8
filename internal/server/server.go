// Package server exposes the voting core over a JSON HTTP API with an SSE
// live board for chamber displays.
package server

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/quorum"
	"github.com/plenumhq/plenum/internal/voting"
)

// Server carries the HTTP handlers for the voting core.
type Server struct {
	svc           *voting.Service
	rules         *quorum.Repository
	sseHub        *sseHub
	operatorToken string
}

// NewServer returns a Server over the given service and rule repository.
// operatorToken, when non-empty, authorizes retroactive mutations for
// requests presenting it in the X-Operator-Token header.
func NewServer(svc *voting.Service, rules *quorum.Repository, operatorToken string) *Server {
	return &Server{
		svc:           svc,
		rules:         rules,
		sseHub:        newSSEHub(),
		operatorToken: operatorToken,
	}
}

// WrapPublisher returns a publisher that forwards to next and mirrors every
// event onto the SSE live board.
func (s *Server) WrapPublisher(next events.Publisher) events.Publisher {
	return &broadcastPublisher{next: next, hub: s.sseHub}
}

// actor extracts the acting user from the X-Actor header.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

// retroactiveAuthorized reports whether the request carries the operator
// token. An empty configured token authorizes nobody.
func (s *Server) retroactiveAuthorized(r *http.Request) bool {
	if s.operatorToken == "" {
		return false
	}
	provided := r.Header.Get("X-Operator-Token")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.operatorToken)) == 1
}

// writeDomainError maps the core's error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrRetroactiveNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrInvalidSessionState),
		errors.Is(err, model.ErrIllegalTransition),
		errors.Is(err, model.ErrRuleConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrLegislatorNotPresent),
		errors.Is(err, model.ErrMissingRetroactiveJustification),
		errors.Is(err, model.ErrInsufficientQuorumToClose),
		errors.Is(err, model.ErrUnknownQuorumRule):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// broadcastPublisher tees published events onto the SSE hub.
type broadcastPublisher struct {
	next events.Publisher
	hub  *sseHub
}

func (p *broadcastPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.hub.broadcastEvent(topic, event)
	return p.next.Publish(ctx, topic, event)
}

func (p *broadcastPublisher) Close() error {
	return p.next.Close()
}
