package model

import "time"

// VotingApplication names the procedural context a quorum rule applies to.
// Applications form a closed set: looking up a rule for an unknown
// application is an error, never a silent default.
type VotingApplication string

const (
	AppSessionOpening   VotingApplication = "session_opening"
	AppSimpleVote       VotingApplication = "simple_vote"
	AppAbsoluteVote     VotingApplication = "absolute_vote"
	AppTwoThirdsVote    VotingApplication = "two_thirds_vote"
	AppThreeFifthsVote  VotingApplication = "three_fifths_vote"
	AppUnanimousConsent VotingApplication = "unanimous_consent"
	AppVetoOverride     VotingApplication = "veto_override"
	AppCommitteeVote    VotingApplication = "committee_vote"
)

// String returns the string representation of the application.
func (a VotingApplication) String() string {
	return string(a)
}

// IsValid checks whether the application is a known value.
func (a VotingApplication) IsValid() bool {
	switch a {
	case AppSessionOpening, AppSimpleVote, AppAbsoluteVote, AppTwoThirdsVote,
		AppThreeFifthsVote, AppUnanimousConsent, AppVetoOverride, AppCommitteeVote:
		return true
	}
	return false
}

// QuorumType selects the approval formula.
type QuorumType string

const (
	SimpleMajority   QuorumType = "simple_majority"
	AbsoluteMajority QuorumType = "absolute_majority"
	TwoThirds        QuorumType = "two_thirds"
	ThreeFifths      QuorumType = "three_fifths"
	Unanimity        QuorumType = "unanimity"
)

// String returns the string representation of the quorum type.
func (t QuorumType) String() string {
	return string(t)
}

// IsValid checks whether the quorum type is a known value.
func (t QuorumType) IsValid() bool {
	switch t {
	case SimpleMajority, AbsoluteMajority, TwoThirds, ThreeFifths, Unanimity:
		return true
	}
	return false
}

// CalculationBase selects the member count thresholds are computed against.
type CalculationBase string

const (
	BasePresentMembers CalculationBase = "present_members"
	BaseTotalMembers   CalculationBase = "total_members"
	BaseTotalMandates  CalculationBase = "total_mandates"
)

// String returns the string representation of the calculation base.
func (b CalculationBase) String() string {
	return string(b)
}

// IsValid checks whether the calculation base is a known value.
func (b CalculationBase) IsValid() bool {
	switch b {
	case BasePresentMembers, BaseTotalMembers, BaseTotalMandates:
		return true
	}
	return false
}

// QuorumRule is a named quorum configuration bound to a voting application.
// At most one rule per application is the default at a time; the partial
// unique index on the quorum_rules table enforces that. A rule referenced by
// a finalized aggregation is immutable: changing it must not rewrite
// historical verdicts.
type QuorumRule struct {
	ID          string            `json:"id"`
	Application VotingApplication `json:"application"`
	QuorumType  QuorumType        `json:"quorum_type"`
	Base        CalculationBase   `json:"calculation_base"`

	// MinimumPercentage and MinimumCount are independent overrides, OR'd with
	// the formula result. Either can flip a rejection to an approval, never
	// the reverse. Percentage is expressed 0-100 against the calculation base.
	MinimumPercentage *float64 `json:"minimum_percentage,omitempty"`
	MinimumCount      *int     `json:"minimum_count,omitempty"`

	AbstentionCountsAgainst bool `json:"abstention_counts_against"`
	RequiresRollCall        bool `json:"requires_roll_call"`
	IsDefault               bool `json:"is_default"`

	ApprovalTemplate  string `json:"approval_template,omitempty"`
	RejectionTemplate string `json:"rejection_template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
