package voting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/plenumhq/plenum/internal/events"
	"github.com/plenumhq/plenum/internal/model"
)

// seedRule plants a default quorum rule directly into the mock store.
func seedRule(ms *mockStore, id string, app model.VotingApplication, qt model.QuorumType, base model.CalculationBase) *model.QuorumRule {
	rule := &model.QuorumRule{
		ID:          id,
		Application: app,
		QuorumType:  qt,
		Base:        base,
		IsDefault:   true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	ms.rules[id] = rule
	return rule
}

// castBallots plants ballots directly into the mock store and matching
// presence records so the quorum-to-close precondition sees them.
func castBallots(ms *mockStore, sessionID, proposalID string, round, yes, no, abstain int) {
	n := 0
	plant := func(choice model.BallotChoice, count int) {
		for i := 0; i < count; i++ {
			n++
			leg := fmt.Sprintf("leg-%d", n)
			markPresent(ms, sessionID, leg)
			ms.ballots[ballotKey(proposalID, leg, round)] = &model.Ballot{
				ProposalID:   proposalID,
				LegislatorID: leg,
				Round:        round,
				SessionID:    sessionID,
				Choice:       choice,
				CastAt:       time.Now().UTC(),
			}
		}
	}
	plant(model.ChoiceYes, yes)
	plant(model.ChoiceNo, no)
	plant(model.ChoiceAbstain, abstain)
}

func TestFinalizeApproved(t *testing.T) {
	svc, ms, mp := newTestService()
	seedSession(ms, "ses-1", model.SessionInProgress, 11)
	seedRule(ms, "rule-abs", model.AppAbsoluteVote, model.AbsoluteMajority, model.BaseTotalMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 6, 1, 0)

	result, err := svc.Finalize(context.Background(), FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppAbsoluteVote,
		ResolvedBy:  "speaker",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Verdict.Approved {
		t.Errorf("verdict = %+v, want approved (6 of 11)", result.Verdict)
	}
	agg := result.Aggregation
	if agg.Outcome != model.OutcomeApproved {
		t.Errorf("outcome = %s, want approved", agg.Outcome)
	}
	if agg.Version != 1 {
		t.Errorf("version = %d, want 1", agg.Version)
	}
	if agg.RuleID != "rule-abs" {
		t.Errorf("rule id = %s, want rule-abs", agg.RuleID)
	}
	if len(ms.audit) != 0 {
		t.Errorf("live finalization produced %d audit entries", len(ms.audit))
	}

	// The default collaborator publishes the proposal outcome, then the
	// service publishes the finalization itself.
	want := []string{events.TopicProposalOutcome, events.TopicVoteFinalized}
	got := mp.topics()
	if len(got) != len(want) {
		t.Fatalf("published topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestFinalizeRejected(t *testing.T) {
	svc, ms, _ := newTestService()
	seedSession(ms, "ses-1", model.SessionInProgress, 9)
	seedRule(ms, "rule-2-3", model.AppTwoThirdsVote, model.TwoThirds, model.BaseTotalMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 5, 4, 0)

	result, err := svc.Finalize(context.Background(), FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppTwoThirdsVote,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict.Approved {
		t.Errorf("verdict = %+v, want rejected (5 of 9 under two thirds)", result.Verdict)
	}
	if result.Aggregation.Outcome != model.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", result.Aggregation.Outcome)
	}
}

func TestFinalizeInsufficientQuorumToClose(t *testing.T) {
	svc, ms, _ := newTestService()
	seedSession(ms, "ses-1", model.SessionInProgress, 11)
	seedRule(ms, "rule-simple", model.AppSimpleVote, model.SimpleMajority, model.BasePresentMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 2, 1, 0)
	// Seven more present members who cast nothing.
	for i := 0; i < 7; i++ {
		markPresent(ms, "ses-1", fmt.Sprintf("leg-silent-%d", i))
	}

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppSimpleVote,
	})
	if !errors.Is(err, model.ErrInsufficientQuorumToClose) {
		t.Errorf("error = %v, want ErrInsufficientQuorumToClose", err)
	}
	if len(ms.aggregations) != 0 {
		t.Error("aggregation written despite failed quorum-to-close")
	}
}

func TestFinalizeUnknownRule(t *testing.T) {
	svc, ms, _ := newTestService()
	seedSession(ms, "ses-1", model.SessionInProgress, 11)
	castBallots(ms, "ses-1", "prop-1", 1, 3, 0, 0)

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppVetoOverride,
	})
	if !errors.Is(err, model.ErrUnknownQuorumRule) {
		t.Errorf("error = %v, want ErrUnknownQuorumRule", err)
	}
}

func TestFinalizeBumpsVersion(t *testing.T) {
	svc, ms, _ := newTestService()
	seedSession(ms, "ses-1", model.SessionInProgress, 11)
	seedRule(ms, "rule-simple", model.AppSimpleVote, model.SimpleMajority, model.BasePresentMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 3, 1, 0)

	in := FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppSimpleVote,
	}

	first, err := svc.Finalize(context.Background(), in)
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	second, err := svc.Finalize(context.Background(), in)
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if first.Aggregation.Version != 1 || second.Aggregation.Version != 2 {
		t.Errorf("versions = %d, %d, want 1, 2",
			first.Aggregation.Version, second.Aggregation.Version)
	}
}

func TestFinalizeRetroactiveSupersede(t *testing.T) {
	svc, ms, _ := newTestService()
	seedSession(ms, "ses-1", model.SessionConcluded, 11)
	seedRule(ms, "rule-simple", model.AppSimpleVote, model.SimpleMajority, model.BasePresentMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 3, 1, 0)
	ms.aggregations[aggregationKey("prop-1", "ses-1", 1)] = &model.VoteAggregation{
		ProposalID: "prop-1",
		SessionID:  "ses-1",
		Round:      1,
		Outcome:    model.OutcomeRejected,
		Version:    1,
	}

	in := FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppSimpleVote,
		ResolvedBy:  "registrar",
	}

	_, err := svc.Finalize(context.Background(), in)
	if !errors.Is(err, model.ErrRetroactiveNotAuthorized) {
		t.Errorf("error = %v, want ErrRetroactiveNotAuthorized", err)
	}

	in.RetroactiveAuthorized = true
	_, err = svc.Finalize(context.Background(), in)
	if !errors.Is(err, model.ErrMissingRetroactiveJustification) {
		t.Errorf("error = %v, want ErrMissingRetroactiveJustification", err)
	}

	in.Note = "recount ordered by the presiding officer"
	result, err := svc.Finalize(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Aggregation.Version != 2 {
		t.Errorf("version = %d, want 2", result.Aggregation.Version)
	}
	if result.Aggregation.RetroactiveNote != in.Note {
		t.Errorf("retroactive note = %q", result.Aggregation.RetroactiveNote)
	}
	if len(ms.audit) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(ms.audit))
	}
	entry := ms.audit[0]
	if entry.Action != model.AuditAggregationSupersede {
		t.Errorf("audit action = %s, want aggregation_superseded", entry.Action)
	}
	if entry.BeforeRef == "" || entry.AfterRef == "" {
		t.Errorf("audit refs incomplete: before=%q after=%q", entry.BeforeRef, entry.AfterRef)
	}
}

func TestFinalizeIllegalSessionStates(t *testing.T) {
	for _, state := range []model.SessionState{model.SessionScheduled, model.SessionCancelled} {
		t.Run(state.String(), func(t *testing.T) {
			svc, ms, _ := newTestService()
			seedSession(ms, "ses-1", state, 11)

			_, err := svc.Finalize(context.Background(), FinalizeInput{
				SessionID:   "ses-1",
				ProposalID:  "prop-1",
				Round:       1,
				Application: model.AppSimpleVote,
			})
			if !errors.Is(err, model.ErrInvalidSessionState) {
				t.Errorf("error = %v, want ErrInvalidSessionState", err)
			}
		})
	}
}

// failingProposals aborts finalization to prove the transaction boundary.
type failingProposals struct{}

func (failingProposals) ApplyVoteOutcome(context.Context, *model.VoteAggregation) error {
	return errors.New("proposal subsystem unavailable")
}

func TestFinalizeAbortsOnProposalStatusFailure(t *testing.T) {
	svc, ms, mp := newTestService()
	svc.UseProposalStatus(failingProposals{})
	seedSession(ms, "ses-1", model.SessionInProgress, 11)
	seedRule(ms, "rule-simple", model.AppSimpleVote, model.SimpleMajority, model.BasePresentMembers)
	castBallots(ms, "ses-1", "prop-1", 1, 3, 1, 0)

	_, err := svc.Finalize(context.Background(), FinalizeInput{
		SessionID:   "ses-1",
		ProposalID:  "prop-1",
		Round:       1,
		Application: model.AppSimpleVote,
	})
	if err == nil {
		t.Fatal("expected error from proposal collaborator")
	}
	if len(mp.topics()) != 0 {
		t.Errorf("events published despite aborted finalization: %v", mp.topics())
	}
}
