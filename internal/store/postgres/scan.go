package postgres

import (
	"database/sql"
	"time"

	"github.com/plenumhq/plenum/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanSession scans a single row into a model.Session.
// The row must contain columns in the order defined by sessionColumns.
func scanSession(row scannable) (*model.Session, error) {
	var s model.Session
	var (
		openedAt    sql.NullTime
		concludedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.State,
		&s.SeatCount,
		&s.ScheduledAt,
		&openedAt,
		&concludedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if openedAt.Valid {
		t := openedAt.Time
		s.OpenedAt = &t
	}
	if concludedAt.Valid {
		t := concludedAt.Time
		s.ConcludedAt = &t
	}

	return &s, nil
}

// scanSessions scans multiple rows into a slice of model.Session pointers.
func scanSessions(rows *sql.Rows) ([]*model.Session, error) {
	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// scanQuorumRule scans a single row into a model.QuorumRule.
func scanQuorumRule(row scannable) (*model.QuorumRule, error) {
	var r model.QuorumRule
	var (
		minPct       sql.NullFloat64
		minCount     sql.NullInt64
		approvalTmpl sql.NullString
		rejectTmpl   sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.Application,
		&r.QuorumType,
		&r.Base,
		&minPct,
		&minCount,
		&r.AbstentionCountsAgainst,
		&r.RequiresRollCall,
		&r.IsDefault,
		&approvalTmpl,
		&rejectTmpl,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if minPct.Valid {
		v := minPct.Float64
		r.MinimumPercentage = &v
	}
	if minCount.Valid {
		v := int(minCount.Int64)
		r.MinimumCount = &v
	}
	r.ApprovalTemplate = approvalTmpl.String
	r.RejectionTemplate = rejectTmpl.String

	return &r, nil
}

// scanQuorumRules scans multiple rows into a slice of model.QuorumRule pointers.
func scanQuorumRules(rows *sql.Rows) ([]*model.QuorumRule, error) {
	var rules []*model.QuorumRule
	for rows.Next() {
		r, err := scanQuorumRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// scanPresence scans a single row into a model.PresenceRecord.
func scanPresence(row scannable) (*model.PresenceRecord, error) {
	var p model.PresenceRecord
	var (
		justification sql.NullString
		recordedBy    sql.NullString
	)
	err := row.Scan(
		&p.SessionID,
		&p.LegislatorID,
		&p.Present,
		&justification,
		&recordedBy,
		&p.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Justification = justification.String
	p.RecordedBy = recordedBy.String
	return &p, nil
}

// scanPresenceRecords scans multiple rows into a slice of model.PresenceRecord pointers.
func scanPresenceRecords(rows *sql.Rows) ([]*model.PresenceRecord, error) {
	var records []*model.PresenceRecord
	for rows.Next() {
		p, err := scanPresence(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// scanBallot scans a single row into a model.Ballot.
func scanBallot(row scannable) (*model.Ballot, error) {
	var b model.Ballot
	var recordedBy sql.NullString
	err := row.Scan(
		&b.ProposalID,
		&b.LegislatorID,
		&b.Round,
		&b.SessionID,
		&b.Choice,
		&recordedBy,
		&b.CastAt,
	)
	if err != nil {
		return nil, err
	}
	b.RecordedBy = recordedBy.String
	return &b, nil
}

// scanBallots scans multiple rows into a slice of model.Ballot pointers.
func scanBallots(rows *sql.Rows) ([]*model.Ballot, error) {
	var ballots []*model.Ballot
	for rows.Next() {
		b, err := scanBallot(rows)
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ballots, nil
}

// scanAggregation scans a single row into a model.VoteAggregation.
// The row must contain columns in the order defined by aggregationColumns.
func scanAggregation(row scannable) (*model.VoteAggregation, error) {
	var a model.VoteAggregation
	var (
		resolvedBy sql.NullString
		retroNote  sql.NullString
	)
	err := row.Scan(
		&a.ProposalID,
		&a.SessionID,
		&a.Round,
		&a.Tally.Yes,
		&a.Tally.No,
		&a.Tally.Abstain,
		&a.Outcome,
		&a.QuorumType,
		&a.RuleID,
		&a.Version,
		&resolvedBy,
		&retroNote,
		&a.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	a.ResolvedBy = resolvedBy.String
	a.RetroactiveNote = retroNote.String
	return &a, nil
}

// scanAggregations scans multiple rows into a slice of model.VoteAggregation pointers.
func scanAggregations(rows *sql.Rows) ([]*model.VoteAggregation, error) {
	var aggs []*model.VoteAggregation
	for rows.Next() {
		a, err := scanAggregation(rows)
		if err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aggs, nil
}

// scanAuditEntry scans a single row into a model.AuditEntry.
func scanAuditEntry(row scannable) (*model.AuditEntry, error) {
	var e model.AuditEntry
	var (
		actor     sql.NullString
		beforeRef sql.NullString
		afterRef  sql.NullString
	)
	err := row.Scan(
		&e.ID,
		&e.SessionID,
		&actor,
		&e.Action,
		&beforeRef,
		&afterRef,
		&e.Justification,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	e.BeforeRef = beforeRef.String
	e.AfterRef = afterRef.String
	return &e, nil
}

// scanAuditEntries scans multiple rows into a slice of model.AuditEntry pointers.
func scanAuditEntries(rows *sql.Rows) ([]*model.AuditEntry, error) {
	var entries []*model.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullFloatPtr converts a *float64 to a sql.NullFloat64.
func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullIntPtr converts a *int to a sql.NullInt64.
func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
