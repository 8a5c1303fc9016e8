package model

import "time"

// BallotChoice is a single legislator's vote on a proposal.
type BallotChoice string

const (
	ChoiceYes     BallotChoice = "yes"
	ChoiceNo      BallotChoice = "no"
	ChoiceAbstain BallotChoice = "abstain"
	// ChoiceAbsent marks a non-voting legislator. Absent choices are
	// informational only and are never persisted as ballot rows.
	ChoiceAbsent BallotChoice = "absent"
)

// String returns the string representation of the choice.
func (c BallotChoice) String() string {
	return string(c)
}

// IsValid checks whether the choice is a known value.
func (c BallotChoice) IsValid() bool {
	switch c {
	case ChoiceYes, ChoiceNo, ChoiceAbstain, ChoiceAbsent:
		return true
	}
	return false
}

// Ballot records one legislator's choice on a proposal within a voting
// round. At most one ballot exists per (proposal, legislator, round);
// re-submission supersedes the prior choice in place.
type Ballot struct {
	ProposalID   string       `json:"proposal_id"`
	LegislatorID string       `json:"legislator_id"`
	Round        int          `json:"round"`
	SessionID    string       `json:"session_id"`
	Choice       BallotChoice `json:"choice"`
	RecordedBy   string       `json:"recorded_by,omitempty"`
	CastAt       time.Time    `json:"cast_at"`
}

// PresenceRecord marks a legislator present or absent for a session.
// Absence is the default for any legislator with no record.
type PresenceRecord struct {
	SessionID     string    `json:"session_id"`
	LegislatorID  string    `json:"legislator_id"`
	Present       bool      `json:"present"`
	Justification string    `json:"justification,omitempty"`
	RecordedBy    string    `json:"recorded_by,omitempty"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Tally is the vote count snapshot for a (proposal, round).
type Tally struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
}

// Cast returns the number of ballots cast, regardless of direction.
func (t Tally) Cast() int {
	return t.Yes + t.No + t.Abstain
}
