// Package voting implements the legislative voting core: session lifecycle,
// the presence ledger, ballot recording, and vote finalization. All mutating
// operations run inside a store transaction; retroactive mutations against
// concluded sessions additionally require authorization, a justification, and
// leave an audit entry in the same transaction.
package voting

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// ProposalStatus receives the outcome of a finalized voting round so the
// proposal subsystem can advance its own workflow. The call happens inside
// the finalization transaction; returning an error aborts the finalization.
type ProposalStatus interface {
	ApplyVoteOutcome(ctx context.Context, agg *model.VoteAggregation) error
}

// Service coordinates the voting core on top of a store and an event publisher.
type Service struct {
	store     store.Store
	publisher events.Publisher
	proposals ProposalStatus
}

// NewService returns a Service backed by the given store and publisher. The
// default proposal-status collaborator publishes plenum.proposal.outcome.
func NewService(s store.Store, p events.Publisher) *Service {
	svc := &Service{store: s, publisher: p}
	svc.proposals = &outcomePublisher{publisher: p}
	return svc
}

// UseProposalStatus replaces the proposal-status collaborator.
func (s *Service) UseProposalStatus(ps ProposalStatus) {
	s.proposals = ps
}

// SetPublisher replaces the event publisher. The default proposal-status
// collaborator follows the replacement.
func (s *Service) SetPublisher(p events.Publisher) {
	if op, ok := s.proposals.(*outcomePublisher); ok {
		op.publisher = p
	}
	s.publisher = p
}

// Store exposes the underlying store for read-only callers such as the HTTP layer.
func (s *Service) Store() store.Store {
	return s.store
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *Service) recordAndPublish(ctx context.Context, topic, sessionID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "session_id", sessionID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:     topic,
		SessionID: sessionID,
		Actor:     actor,
		Payload:   payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "session_id", sessionID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "session_id", sessionID, "error", err)
	}
}

// outcomePublisher is the default ProposalStatus: it forwards round outcomes
// onto the event bus and lets subscribers own the proposal workflow.
type outcomePublisher struct {
	publisher events.Publisher
}

func (p *outcomePublisher) ApplyVoteOutcome(ctx context.Context, agg *model.VoteAggregation) error {
	return p.publisher.Publish(ctx, events.TopicProposalOutcome, events.ProposalOutcome{
		ProposalID: agg.ProposalID,
		SessionID:  agg.SessionID,
		Round:      agg.Round,
		Outcome:    agg.Outcome,
		Tally:      agg.Tally,
	})
}
