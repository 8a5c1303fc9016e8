package events

import (
	"context"

	"github.com/plenumhq/plenum/internal/model"
)

// Event topic constants
const (
	TopicSessionCreated   = "plenum.session.created"
	TopicSessionOpened    = "plenum.session.opened"
	TopicSessionConcluded = "plenum.session.concluded"
	TopicSessionCancelled = "plenum.session.cancelled"

	TopicPresenceMarked  = "plenum.presence.marked"
	TopicBallotsRecorded = "plenum.ballots.recorded"
	TopicVoteFinalized   = "plenum.vote.finalized"
	TopicProposalOutcome = "plenum.proposal.outcome"
)

// Event types

type SessionCreated struct {
	Session *model.Session `json:"session"`
}

type SessionTransitioned struct {
	Session *model.Session     `json:"session"`
	From    model.SessionState `json:"from"`
	Actor   string             `json:"actor,omitempty"`
}

type PresenceMarked struct {
	Record      *model.PresenceRecord `json:"record"`
	Retroactive bool                  `json:"retroactive"`
}

type BallotsRecorded struct {
	SessionID   string `json:"session_id"`
	ProposalID  string `json:"proposal_id"`
	Round       int    `json:"round"`
	Count       int    `json:"count"`
	Updated     int    `json:"updated"`
	Retroactive bool   `json:"retroactive"`
	Actor       string `json:"actor,omitempty"`
}

type VoteFinalized struct {
	Aggregation *model.VoteAggregation `json:"aggregation"`
	Approved    bool                   `json:"approved"`
	Message     string                 `json:"message"`
	Retroactive bool                   `json:"retroactive"`
}

type ProposalOutcome struct {
	ProposalID string            `json:"proposal_id"`
	SessionID  string            `json:"session_id"`
	Round      int               `json:"round"`
	Outcome    model.VoteOutcome `json:"outcome"`
	Tally      model.Tally       `json:"tally"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
