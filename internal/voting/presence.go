package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// MarkPresenceInput carries a presence-ledger write. RetroactiveAuthorized is
// the identity layer's answer to whether the actor may mutate a concluded
// session; it is ignored for live sessions.
type MarkPresenceInput struct {
	SessionID             string
	LegislatorID          string
	Present               bool
	Justification         string
	Actor                 string
	RetroactiveAuthorized bool
}

// MarkPresence records a legislator as present or absent for a session.
// Re-marking overwrites the prior record. On a concluded session the write is
// retroactive: it requires authorization and a justification, and it leaves an
// audit entry in the same transaction as the ledger write.
func (s *Service) MarkPresence(ctx context.Context, in MarkPresenceInput) (*model.PresenceRecord, error) {
	if in.LegislatorID == "" {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "legislator_id", Message: "is required"},
		}}
	}

	session, err := s.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.CanMarkPresence() {
		return nil, fmt.Errorf("session %s is cancelled: %w", session.ID, model.ErrInvalidSessionState)
	}

	retroactive := session.IsRetroactive()
	if retroactive {
		if !in.RetroactiveAuthorized {
			return nil, fmt.Errorf("presence on concluded session %s: %w",
				session.ID, model.ErrRetroactiveNotAuthorized)
		}
		if in.Justification == "" {
			return nil, fmt.Errorf("presence on concluded session %s: %w",
				session.ID, model.ErrMissingRetroactiveJustification)
		}
	}

	rec := &model.PresenceRecord{
		SessionID:     in.SessionID,
		LegislatorID:  in.LegislatorID,
		Present:       in.Present,
		Justification: in.Justification,
		RecordedBy:    in.Actor,
		RecordedAt:    time.Now().UTC(),
	}

	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.UpsertPresence(ctx, rec); err != nil {
			return fmt.Errorf("upsert presence: %w", err)
		}
		if !retroactive {
			return nil
		}
		return tx.AppendAudit(ctx, &model.AuditEntry{
			SessionID:     in.SessionID,
			Actor:         in.Actor,
			Action:        model.AuditPresenceMarked,
			AfterRef:      fmt.Sprintf("%s present=%t", in.LegislatorID, in.Present),
			Justification: in.Justification,
			CreatedAt:     rec.RecordedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicPresenceMarked, in.SessionID, in.Actor,
		events.PresenceMarked{Record: rec, Retroactive: retroactive})
	return rec, nil
}

// IsPresent reports whether the legislator has an affirmative presence record
// for the session. A missing record means absent.
func (s *Service) IsPresent(ctx context.Context, sessionID, legislatorID string) (bool, error) {
	rec, err := s.store.GetPresence(ctx, sessionID, legislatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get presence: %w", err)
	}
	return rec.Present, nil
}

// ListPresence returns all presence records for a session.
func (s *Service) ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	return s.store.ListPresence(ctx, sessionID)
}

// ListAudit returns the audit trail for a session, oldest first.
func (s *Service) ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error) {
	return s.store.ListAudit(ctx, sessionID)
}
