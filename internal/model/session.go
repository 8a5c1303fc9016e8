package model

import "time"

// SessionState represents the lifecycle state of a plenary session.
type SessionState string

const (
	SessionScheduled  SessionState = "scheduled"
	SessionInProgress SessionState = "in_progress"
	SessionConcluded  SessionState = "concluded"
	SessionCancelled  SessionState = "cancelled"
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	return string(s)
}

// IsValid checks whether the session state is a known value.
func (s SessionState) IsValid() bool {
	switch s {
	case SessionScheduled, SessionInProgress, SessionConcluded, SessionCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the state admits no further transitions.
func (s SessionState) IsTerminal() bool {
	return s == SessionConcluded || s == SessionCancelled
}

// Session is a single sitting of the legislative body.
type Session struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitempty"`
	State       SessionState `json:"state"`
	SeatCount   int          `json:"seat_count"` // total mandates of the chamber at this sitting
	ScheduledAt time.Time    `json:"scheduled_at"`
	OpenedAt    *time.Time   `json:"opened_at,omitempty"`
	ConcludedAt *time.Time   `json:"concluded_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CanRecordVote reports whether ballots may be recorded against the session.
// Voting is legal while the sitting is in progress, and on a concluded
// session in retroactive mode. Scheduled and cancelled sessions accept
// no ballots.
func (s *Session) CanRecordVote() bool {
	return s.State == SessionInProgress || s.State == SessionConcluded
}

// IsRetroactive reports whether mutations against the session are
// retroactive, i.e. the sitting has already been concluded. Retroactive
// mutations require a justification and are mirrored into the audit trail.
func (s *Session) IsRetroactive() bool {
	return s.State == SessionConcluded
}

// CanMarkPresence reports whether presence records may still be written.
// Presence is always mutable except on cancelled sessions.
func (s *Session) CanMarkPresence() bool {
	return s.State != SessionCancelled
}

// CanTransitionTo reports whether the session may move to the given state.
// Conclusion is one-way: a concluded session never returns to in_progress.
func (s *Session) CanTransitionTo(to SessionState) bool {
	switch s.State {
	case SessionScheduled:
		return to == SessionInProgress || to == SessionCancelled
	case SessionInProgress:
		return to == SessionConcluded || to == SessionCancelled
	}
	return false
}
