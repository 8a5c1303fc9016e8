package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateSession checks a Session for constraint violations.
func ValidateSession(s *Session) error {
	var ve ValidationError

	if !s.State.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "state",
			Message: fmt.Sprintf("invalid value %q", s.State),
		})
	}
	if s.SeatCount <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "seat_count",
			Message: fmt.Sprintf("must be positive, got %d", s.SeatCount),
		})
	}
	if s.ScheduledAt.IsZero() {
		ve.Errors = append(ve.Errors, FieldError{Field: "scheduled_at", Message: "is required"})
	}
	if s.State == SessionConcluded && s.ConcludedAt == nil {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "concluded_at",
			Message: "is required when state is concluded",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateQuorumRule checks a QuorumRule for constraint violations.
func ValidateQuorumRule(r *QuorumRule) error {
	var ve ValidationError

	if !r.Application.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "application",
			Message: fmt.Sprintf("invalid value %q", r.Application),
		})
	}
	if !r.QuorumType.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "quorum_type",
			Message: fmt.Sprintf("invalid value %q", r.QuorumType),
		})
	}
	if !r.Base.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "calculation_base",
			Message: fmt.Sprintf("invalid value %q", r.Base),
		})
	}
	if r.MinimumPercentage != nil && (*r.MinimumPercentage < 0 || *r.MinimumPercentage > 100) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "minimum_percentage",
			Message: fmt.Sprintf("must be between 0 and 100, got %g", *r.MinimumPercentage),
		})
	}
	if r.MinimumCount != nil && *r.MinimumCount < 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "minimum_count",
			Message: fmt.Sprintf("must not be negative, got %d", *r.MinimumCount),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateBallotBatch checks a batch of ballots for a single round before any
// of it is persisted. Duplicate legislators within one batch are rejected so
// the upsert outcome stays deterministic.
func ValidateBallotBatch(ballots []*Ballot) error {
	var ve ValidationError

	if len(ballots) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "ballots", Message: "must not be empty"})
	}

	seen := make(map[string]struct{}, len(ballots))
	for i, b := range ballots {
		field := fmt.Sprintf("ballots[%d]", i)
		if b.LegislatorID == "" {
			ve.Errors = append(ve.Errors, FieldError{Field: field + ".legislator_id", Message: "is required"})
		}
		if !b.Choice.IsValid() {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   field + ".choice",
				Message: fmt.Sprintf("invalid value %q", b.Choice),
			})
		}
		if b.Round < 1 {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   field + ".round",
				Message: fmt.Sprintf("must be at least 1, got %d", b.Round),
			})
		}
		if _, dup := seen[b.LegislatorID]; dup && b.LegislatorID != "" {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   field + ".legislator_id",
				Message: fmt.Sprintf("duplicate legislator %q in batch", b.LegislatorID),
			})
		}
		seen[b.LegislatorID] = struct{}{}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
