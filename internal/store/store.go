package store

import (
	"context"
	"time"

	"github.com/plenumhq/plenum/internal/model"
)

// Store defines the persistence interface for the voting core.
//
// Implementations must provide unique-key upsert semantics for ballots,
// presence records, and vote aggregations, and atomic multi-write
// transactions via RunInTransaction. Missing rows surface as sql.ErrNoRows.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	UpdateSessionState(ctx context.Context, id string, state model.SessionState, at time.Time) error

	// Quorum rules
	GetDefaultQuorumRule(ctx context.Context, app model.VotingApplication) (*model.QuorumRule, error)
	PutQuorumRule(ctx context.Context, rule *model.QuorumRule) error
	ListQuorumRules(ctx context.Context) ([]*model.QuorumRule, error)
	RuleIsReferenced(ctx context.Context, ruleID string) (bool, error)

	// Presence
	UpsertPresence(ctx context.Context, rec *model.PresenceRecord) error
	GetPresence(ctx context.Context, sessionID, legislatorID string) (*model.PresenceRecord, error)
	ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error)
	CountPresent(ctx context.Context, sessionID string) (int, error)

	// Ballots
	UpsertBallot(ctx context.Context, ballot *model.Ballot) (wasUpdate bool, err error)
	ListBallots(ctx context.Context, proposalID string, round int) ([]*model.Ballot, error)
	TallyBallots(ctx context.Context, proposalID string, round int) (model.Tally, error)

	// Aggregations
	UpsertAggregation(ctx context.Context, agg *model.VoteAggregation) error
	GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error)
	ListAggregations(ctx context.Context) ([]*model.VoteAggregation, error)

	// Audit trail
	AppendAudit(ctx context.Context, entry *model.AuditEntry) error
	ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
