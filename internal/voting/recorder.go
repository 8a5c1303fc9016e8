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

// BallotInput is one legislator's choice within a batch.
type BallotInput struct {
	LegislatorID string             `json:"legislator_id"`
	Choice       model.BallotChoice `json:"choice"`
}

// RecordBallotsInput carries an all-or-nothing ballot batch for one
// (proposal, round) within a session.
type RecordBallotsInput struct {
	SessionID             string
	ProposalID            string
	Round                 int
	Ballots               []BallotInput
	Justification         string
	Actor                 string
	RetroactiveAuthorized bool
}

// BallotOutcome reports what happened to one ballot in a recorded batch.
// Absent choices are acknowledged but never persisted, so Recorded is false
// for them.
type BallotOutcome struct {
	LegislatorID string             `json:"legislator_id"`
	Choice       model.BallotChoice `json:"choice"`
	Recorded     bool               `json:"recorded"`
	WasUpdate    bool               `json:"was_update"`
}

// RecordBallots persists a batch of ballots atomically. The whole batch is
// validated up front and written in one transaction: a single legislator
// without an affirmative presence record fails the entire batch with
// ErrLegislatorNotPresent. Re-submitted ballots supersede the prior choice in
// place. On a concluded session the batch is retroactive and leaves one audit
// entry alongside the ballots.
func (s *Service) RecordBallots(ctx context.Context, in RecordBallotsInput) ([]BallotOutcome, error) {
	if in.ProposalID == "" {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "proposal_id", Message: "is required"},
		}}
	}

	now := time.Now().UTC()
	ballots := make([]*model.Ballot, len(in.Ballots))
	for i, b := range in.Ballots {
		ballots[i] = &model.Ballot{
			ProposalID:   in.ProposalID,
			LegislatorID: b.LegislatorID,
			Round:        in.Round,
			SessionID:    in.SessionID,
			Choice:       b.Choice,
			RecordedBy:   in.Actor,
			CastAt:       now,
		}
	}
	if err := model.ValidateBallotBatch(ballots); err != nil {
		return nil, err
	}

	var (
		outcomes    []BallotOutcome
		retroactive bool
		updated     int
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		outcomes = outcomes[:0]
		updated = 0

		session, err := tx.GetSession(ctx, in.SessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("session %s: %w", in.SessionID, model.ErrSessionNotFound)
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if !session.CanRecordVote() {
			return fmt.Errorf("session %s is %s: %w", session.ID, session.State, model.ErrInvalidSessionState)
		}

		retroactive = session.IsRetroactive()
		if retroactive {
			if !in.RetroactiveAuthorized {
				return fmt.Errorf("ballots on concluded session %s: %w",
					session.ID, model.ErrRetroactiveNotAuthorized)
			}
			if in.Justification == "" {
				return fmt.Errorf("ballots on concluded session %s: %w",
					session.ID, model.ErrMissingRetroactiveJustification)
			}
		}

		// Presence precondition first, across the whole batch, so a failing
		// legislator rejects the batch before any ballot is written.
		for _, b := range ballots {
			if b.Choice == model.ChoiceAbsent {
				continue
			}
			rec, err := tx.GetPresence(ctx, in.SessionID, b.LegislatorID)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && !rec.Present) {
				return fmt.Errorf("legislator %s in session %s: %w",
					b.LegislatorID, in.SessionID, model.ErrLegislatorNotPresent)
			}
			if err != nil {
				return fmt.Errorf("get presence: %w", err)
			}
		}

		for _, b := range ballots {
			if b.Choice == model.ChoiceAbsent {
				outcomes = append(outcomes, BallotOutcome{
					LegislatorID: b.LegislatorID,
					Choice:       b.Choice,
				})
				continue
			}
			wasUpdate, err := tx.UpsertBallot(ctx, b)
			if err != nil {
				return fmt.Errorf("upsert ballot for %s: %w", b.LegislatorID, err)
			}
			if wasUpdate {
				updated++
			}
			outcomes = append(outcomes, BallotOutcome{
				LegislatorID: b.LegislatorID,
				Choice:       b.Choice,
				Recorded:     true,
				WasUpdate:    wasUpdate,
			})
		}

		if !retroactive {
			return nil
		}
		return tx.AppendAudit(ctx, &model.AuditEntry{
			SessionID:     in.SessionID,
			Actor:         in.Actor,
			Action:        model.AuditBallotsRecorded,
			AfterRef:      fmt.Sprintf("%s round %d: %d ballots", in.ProposalID, in.Round, len(ballots)),
			Justification: in.Justification,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicBallotsRecorded, in.SessionID, in.Actor,
		events.BallotsRecorded{
			SessionID:   in.SessionID,
			ProposalID:  in.ProposalID,
			Round:       in.Round,
			Count:       len(outcomes),
			Updated:     updated,
			Retroactive: retroactive,
			Actor:       in.Actor,
		})
	return outcomes, nil
}

// ListBallots returns the current ballots for a (proposal, round).
func (s *Service) ListBallots(ctx context.Context, proposalID string, round int) ([]*model.Ballot, error) {
	return s.store.ListBallots(ctx, proposalID, round)
}
