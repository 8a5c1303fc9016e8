package voting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/quorum"
	"github.com/plenumhq/plenum/internal/store"
)

// FinalizeInput carries a vote-finalization request. Application selects the
// quorum rule; Note is the retroactive justification required when a prior
// aggregation for the same key is superseded on a concluded session.
type FinalizeInput struct {
	SessionID             string
	ProposalID            string
	Round                 int
	Application           model.VotingApplication
	ResolvedBy            string
	Note                  string
	RetroactiveAuthorized bool
}

// FinalizeResult is the outcome of a finalized voting round.
type FinalizeResult struct {
	Aggregation *model.VoteAggregation `json:"aggregation"`
	Verdict     quorum.Verdict         `json:"verdict"`
}

// Finalize closes a voting round: it tallies the ballots, resolves them
// against the rule bound to the voting application, and writes exactly one
// VoteAggregation per (proposal, session, round). Re-finalizing the same key
// supersedes the prior aggregation and bumps its version. The tally, the
// aggregation write, the audit entry, and the proposal-status signal commit
// or roll back together.
func (s *Service) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	if in.ProposalID == "" {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "proposal_id", Message: "is required"},
		}}
	}
	if in.Round < 1 {
		return nil, &model.ValidationError{Errors: []model.FieldError{
			{Field: "round", Message: fmt.Sprintf("must be at least 1, got %d", in.Round)},
		}}
	}

	var (
		result      FinalizeResult
		retroactive bool
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
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
		if retroactive && !in.RetroactiveAuthorized {
			return fmt.Errorf("finalize on concluded session %s: %w",
				session.ID, model.ErrRetroactiveNotAuthorized)
		}

		present, err := tx.CountPresent(ctx, in.SessionID)
		if err != nil {
			return fmt.Errorf("count present: %w", err)
		}
		tally, err := tx.TallyBallots(ctx, in.ProposalID, in.Round)
		if err != nil {
			return fmt.Errorf("tally ballots: %w", err)
		}
		if need := quorum.QuorumToClose(present); tally.Cast() < need {
			return fmt.Errorf("%d ballots cast, %d required: %w",
				tally.Cast(), need, model.ErrInsufficientQuorumToClose)
		}

		rule, err := quorum.LookupRule(ctx, tx, in.Application)
		if err != nil {
			return err
		}
		verdict := quorum.Resolve(rule, tally, session.SeatCount, present)

		prior, err := tx.GetAggregation(ctx, in.ProposalID, in.SessionID, in.Round)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("get aggregation: %w", err)
		}
		superseding := prior != nil
		if retroactive && superseding && in.Note == "" {
			return fmt.Errorf("superseding aggregation for %s round %d: %w",
				in.ProposalID, in.Round, model.ErrMissingRetroactiveJustification)
		}

		outcome := model.OutcomeRejected
		if verdict.Approved {
			outcome = model.OutcomeApproved
		}
		agg := &model.VoteAggregation{
			ProposalID:  in.ProposalID,
			SessionID:   in.SessionID,
			Round:       in.Round,
			Tally:       tally,
			Outcome:     outcome,
			QuorumType:  rule.QuorumType,
			RuleID:      rule.ID,
			ResolvedBy:  in.ResolvedBy,
			FinalizedAt: time.Now().UTC(),
		}
		if retroactive {
			agg.RetroactiveNote = in.Note
		}

		if err := tx.UpsertAggregation(ctx, agg); err != nil {
			return fmt.Errorf("upsert aggregation: %w", err)
		}

		if retroactive {
			entry := &model.AuditEntry{
				SessionID:     in.SessionID,
				Actor:         in.ResolvedBy,
				Action:        model.AuditAggregationSupersede,
				AfterRef:      aggregationRef(agg.ProposalID, agg.Round, agg.Version),
				Justification: in.Note,
				CreatedAt:     agg.FinalizedAt,
			}
			if superseding {
				entry.BeforeRef = aggregationRef(prior.ProposalID, prior.Round, prior.Version)
			}
			if err := tx.AppendAudit(ctx, entry); err != nil {
				return fmt.Errorf("append audit: %w", err)
			}
		}

		if err := s.proposals.ApplyVoteOutcome(ctx, agg); err != nil {
			return fmt.Errorf("apply vote outcome: %w", err)
		}

		result = FinalizeResult{Aggregation: agg, Verdict: verdict}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicVoteFinalized, in.SessionID, in.ResolvedBy,
		events.VoteFinalized{
			Aggregation: result.Aggregation,
			Approved:    result.Verdict.Approved,
			Message:     result.Verdict.Message,
			Retroactive: retroactive,
		})
	return &result, nil
}

// GetAggregation returns the canonical aggregation for a key, if any.
func (s *Service) GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	agg, err := s.store.GetAggregation(ctx, proposalID, sessionID, round)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregation: %w", err)
	}
	return agg, nil
}

func aggregationRef(proposalID string, round, version int) string {
	return fmt.Sprintf("%s/round-%d@v%d", proposalID, round, version)
}
