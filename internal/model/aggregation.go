package model

import "time"

// VoteOutcome is the resolved result of a voting round.
type VoteOutcome string

const (
	OutcomeApproved VoteOutcome = "approved"
	OutcomeRejected VoteOutcome = "rejected"
)

// String returns the string representation of the outcome.
func (o VoteOutcome) String() string {
	return string(o)
}

// IsValid checks whether the outcome is a known value.
func (o VoteOutcome) IsValid() bool {
	return o == OutcomeApproved || o == OutcomeRejected
}

// VoteAggregation is the immutable per-(proposal, session, round) record of
// a finalized voting round. Re-finalizing the same key supersedes the prior
// aggregation in place and bumps Version, so downstream consumers can tell
// the canonical verdict from a superseded one.
type VoteAggregation struct {
	ProposalID string      `json:"proposal_id"`
	SessionID  string      `json:"session_id"`
	Round      int         `json:"round"`
	Tally      Tally       `json:"tally"`
	Outcome    VoteOutcome `json:"outcome"`
	QuorumType QuorumType  `json:"quorum_type"`
	RuleID     string      `json:"rule_id"`
	Version    int         `json:"version"`

	ResolvedBy      string    `json:"resolved_by,omitempty"`
	RetroactiveNote string    `json:"retroactive_note,omitempty"`
	FinalizedAt     time.Time `json:"finalized_at"`
}

// AuditAction categorizes a retroactive mutation in the audit trail.
type AuditAction string

const (
	AuditBallotsRecorded      AuditAction = "ballots_recorded"
	AuditPresenceMarked       AuditAction = "presence_marked"
	AuditAggregationSupersede AuditAction = "aggregation_superseded"
)

// String returns the string representation of the audit action.
func (a AuditAction) String() string {
	return string(a)
}

// AuditEntry is an append-only record of a retroactive mutation. Entries are
// written in the same transaction as the mutation they describe; the
// justification is mandatory whenever the target session is concluded.
type AuditEntry struct {
	ID            int64       `json:"id"`
	SessionID     string      `json:"session_id"`
	Actor         string      `json:"actor,omitempty"`
	Action        AuditAction `json:"action"`
	BeforeRef     string      `json:"before_ref,omitempty"`
	AfterRef      string      `json:"after_ref,omitempty"`
	Justification string      `json:"justification"`
	CreatedAt     time.Time   `json:"created_at"`
}
