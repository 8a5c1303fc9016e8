package model

import "errors"

// Caller-recoverable errors returned by the voting core. Transport layers
// surface these as user-facing validation failures; none of them warrant a
// retry. Unexpected persistence failures are propagated unwrapped alongside
// this taxonomy.
var (
	// ErrInvalidSessionState is returned when an operation is illegal in the
	// session's current lifecycle state.
	ErrInvalidSessionState = errors.New("operation not allowed in current session state")

	// ErrIllegalTransition is returned when a lifecycle transition would
	// reverse a terminal state, such as reopening a concluded session.
	ErrIllegalTransition = errors.New("illegal session state transition")

	// ErrLegislatorNotPresent is returned when a ballot names a legislator
	// without a presence record for the session.
	ErrLegislatorNotPresent = errors.New("legislator is not marked present")

	// ErrMissingRetroactiveJustification is returned when a mutation against
	// a concluded session lacks the mandatory justification.
	ErrMissingRetroactiveJustification = errors.New("retroactive mutation requires a justification")

	// ErrRetroactiveNotAuthorized is returned when the caller lacks the
	// retroactive-mutation authorization supplied by the identity layer.
	ErrRetroactiveNotAuthorized = errors.New("caller is not authorized for retroactive mutations")

	// ErrInsufficientQuorumToClose is returned when finalization is attempted
	// before enough ballots were cast to reach quorum at all.
	ErrInsufficientQuorumToClose = errors.New("insufficient ballots cast to close the round")

	// ErrUnknownQuorumRule is returned when no default rule is bound to the
	// requested voting application.
	ErrUnknownQuorumRule = errors.New("no quorum rule bound to voting application")

	// ErrSessionNotFound is returned when the named session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrRuleConflict is returned when storing a rule would leave an
	// application with two defaults, or mutate a rule already referenced by a
	// finalized aggregation.
	ErrRuleConflict = errors.New("quorum rule conflicts with an existing rule or aggregation")
)
