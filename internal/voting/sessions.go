package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/idgen"
	"github.com/plenumhq/plenum/internal/model"
)

// CreateSessionInput carries the fields for scheduling a new sitting.
type CreateSessionInput struct {
	Name        string
	SeatCount   int
	ScheduledAt time.Time
	Actor       string
}

// CreateSession schedules a new session. Sessions always start in the
// scheduled state.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	now := time.Now().UTC()
	session := &model.Session{
		Name:        in.Name,
		State:       model.SessionScheduled,
		SeatCount:   in.SeatCount,
		ScheduledAt: in.ScheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := model.ValidateSession(session); err != nil {
		return nil, err
	}

	id, err := idgen.GenerateWithPrefix(idgen.SessionPrefix)
	if err != nil {
		return nil, err
	}
	session.ID = id

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.recordAndPublish(ctx, events.TopicSessionCreated, session.ID, in.Actor,
		events.SessionCreated{Session: session})
	return session, nil
}

// GetSession returns the session with the given ID.
func (s *Service) GetSession(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, model.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListSessions returns all sessions ordered by scheduled time.
func (s *Service) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.store.ListSessions(ctx)
}

// TransitionInput carries a session lifecycle transition request.
type TransitionInput struct {
	SessionID string
	To        model.SessionState
	Actor     string
}

// TransitionSession moves a session to a new lifecycle state. Transitions out
// of a terminal state fail with ErrIllegalTransition; any other disallowed
// move fails with ErrInvalidSessionState.
func (s *Service) TransitionSession(ctx context.Context, in TransitionInput) (*model.Session, error) {
	if !in.To.IsValid() {
		return nil, fmt.Errorf("target state %q: %w", in.To, model.ErrInvalidSessionState)
	}

	session, err := s.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	from := session.State

	if from.IsTerminal() {
		return nil, fmt.Errorf("session %s is %s: %w", session.ID, from, model.ErrIllegalTransition)
	}
	if !session.CanTransitionTo(in.To) {
		return nil, fmt.Errorf("cannot move session %s from %s to %s: %w",
			session.ID, from, in.To, model.ErrInvalidSessionState)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateSessionState(ctx, session.ID, in.To, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", session.ID, model.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("update session state: %w", err)
	}

	session.State = in.To
	session.UpdatedAt = now
	switch in.To {
	case model.SessionInProgress:
		session.OpenedAt = &now
	case model.SessionConcluded:
		session.ConcludedAt = &now
	}

	s.recordAndPublish(ctx, transitionTopic(in.To), session.ID, in.Actor,
		events.SessionTransitioned{Session: session, From: from, Actor: in.Actor})
	return session, nil
}

func transitionTopic(to model.SessionState) string {
	switch to {
	case model.SessionInProgress:
		return events.TopicSessionOpened
	case model.SessionConcluded:
		return events.TopicSessionConcluded
	case model.SessionCancelled:
		return events.TopicSessionCancelled
	}
	return events.TopicSessionOpened
}
