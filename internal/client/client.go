// Package client provides a transport-agnostic interface for the plenum
// service and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/voting"
)

// PlenumClient is the interface the plenumd CLI commands use to talk to the
// server. It is implemented by HTTPClient.
type PlenumClient interface {
	// Sessions
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context) ([]*model.Session, error)
	TransitionSession(ctx context.Context, id string, to model.SessionState) (*model.Session, error)

	// Presence
	MarkPresence(ctx context.Context, req *MarkPresenceRequest) (*model.PresenceRecord, error)
	ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error)

	// Voting
	RecordBallots(ctx context.Context, req *RecordBallotsRequest) ([]voting.BallotOutcome, error)
	Finalize(ctx context.Context, req *FinalizeRequest) (*voting.FinalizeResult, error)
	GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error)

	// Rules
	ListRules(ctx context.Context) ([]*model.QuorumRule, error)
	PutRule(ctx context.Context, rule *model.QuorumRule) (*model.QuorumRule, error)

	// Audit
	ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateSessionRequest holds parameters for scheduling a session.
type CreateSessionRequest struct {
	Name        string    `json:"name,omitempty"`
	SeatCount   int       `json:"seat_count"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// MarkPresenceRequest holds parameters for a presence-ledger write.
type MarkPresenceRequest struct {
	SessionID     string `json:"-"`
	LegislatorID  string `json:"-"`
	Present       bool   `json:"present"`
	Justification string `json:"justification,omitempty"`
}

// RecordBallotsRequest holds a ballot batch for one (proposal, round).
type RecordBallotsRequest struct {
	SessionID     string               `json:"-"`
	ProposalID    string               `json:"proposal_id"`
	Round         int                  `json:"round"`
	Ballots       []voting.BallotInput `json:"ballots"`
	Justification string               `json:"justification,omitempty"`
}

// FinalizeRequest holds parameters for closing a voting round.
type FinalizeRequest struct {
	SessionID   string                  `json:"-"`
	ProposalID  string                  `json:"proposal_id"`
	Round       int                     `json:"round"`
	Application model.VotingApplication `json:"application"`
	Note        string                  `json:"note,omitempty"`
}

// APIError is an error response from the plenum server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}
