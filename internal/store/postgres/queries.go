package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/model"
)

// sessionColumns is the column list used for SELECT statements on the sessions table.
const sessionColumns = `id, name, state, seat_count, scheduled_at, opened_at, concluded_at,
	created_at, updated_at`

// ruleColumns is the column list used for SELECT statements on the quorum_rules table.
const ruleColumns = `id, application, quorum_type, calculation_base,
	minimum_percentage, minimum_count, abstention_counts_against, requires_roll_call,
	is_default, approval_template, rejection_template, created_at, updated_at`

// aggregationColumns is the column list used for SELECT statements on the
// vote_aggregations table.
const aggregationColumns = `proposal_id, session_id, round, yes_count, no_count, abstain_count,
	outcome, quorum_type, rule_id, version, resolved_by, retroactive_note, finalized_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateSession(ctx context.Context, db executor, s *model.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, name, state, seat_count, scheduled_at, opened_at, concluded_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID,
		s.Name,
		string(s.State),
		s.SeatCount,
		s.ScheduledAt,
		nullTimePtr(s.OpenedAt),
		nullTimePtr(s.ConcludedAt),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func queryGetSession(ctx context.Context, db executor, id string) (*model.Session, error) {
	row := db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

func queryListSessions(ctx context.Context, db executor) ([]*model.Session, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions ORDER BY scheduled_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func queryUpdateSessionState(ctx context.Context, db executor, id string, state model.SessionState, at time.Time) error {
	var query string
	switch state {
	case model.SessionInProgress:
		query = `UPDATE sessions SET state = $2, opened_at = $3, updated_at = NOW() WHERE id = $1`
	case model.SessionConcluded:
		query = `UPDATE sessions SET state = $2, concluded_at = $3, updated_at = NOW() WHERE id = $1`
	default:
		query = `UPDATE sessions SET state = $2, updated_at = $3 WHERE id = $1`
	}

	res, err := db.ExecContext(ctx, query, id, string(state), at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryGetDefaultQuorumRule(ctx context.Context, db executor, app model.VotingApplication) (*model.QuorumRule, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+ruleColumns+` FROM quorum_rules
		WHERE application = $1 AND is_default`,
		string(app),
	)
	return scanQuorumRule(row)
}

func queryPutQuorumRule(ctx context.Context, db executor, r *model.QuorumRule) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO quorum_rules (
			id, application, quorum_type, calculation_base,
			minimum_percentage, minimum_count, abstention_counts_against, requires_roll_call,
			is_default, approval_template, rejection_template, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			application = EXCLUDED.application,
			quorum_type = EXCLUDED.quorum_type,
			calculation_base = EXCLUDED.calculation_base,
			minimum_percentage = EXCLUDED.minimum_percentage,
			minimum_count = EXCLUDED.minimum_count,
			abstention_counts_against = EXCLUDED.abstention_counts_against,
			requires_roll_call = EXCLUDED.requires_roll_call,
			is_default = EXCLUDED.is_default,
			approval_template = EXCLUDED.approval_template,
			rejection_template = EXCLUDED.rejection_template,
			updated_at = EXCLUDED.updated_at`,
		r.ID,
		string(r.Application),
		string(r.QuorumType),
		string(r.Base),
		nullFloatPtr(r.MinimumPercentage),
		nullIntPtr(r.MinimumCount),
		r.AbstentionCountsAgainst,
		r.RequiresRollCall,
		r.IsDefault,
		nullString(r.ApprovalTemplate),
		nullString(r.RejectionTemplate),
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

func queryListQuorumRules(ctx context.Context, db executor) ([]*model.QuorumRule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+ruleColumns+` FROM quorum_rules ORDER BY application, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuorumRules(rows)
}

func queryRuleIsReferenced(ctx context.Context, db executor, ruleID string) (bool, error) {
	var referenced bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM vote_aggregations WHERE rule_id = $1)`,
		ruleID,
	).Scan(&referenced)
	return referenced, err
}

func queryUpsertPresence(ctx context.Context, db executor, p *model.PresenceRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO presence (session_id, legislator_id, present, justification, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, legislator_id) DO UPDATE SET
			present = EXCLUDED.present,
			justification = EXCLUDED.justification,
			recorded_by = EXCLUDED.recorded_by,
			recorded_at = EXCLUDED.recorded_at`,
		p.SessionID,
		p.LegislatorID,
		p.Present,
		nullString(p.Justification),
		nullString(p.RecordedBy),
		p.RecordedAt,
	)
	return err
}

func queryGetPresence(ctx context.Context, db executor, sessionID, legislatorID string) (*model.PresenceRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT session_id, legislator_id, present, justification, recorded_by, recorded_at
		FROM presence
		WHERE session_id = $1 AND legislator_id = $2`,
		sessionID, legislatorID,
	)
	return scanPresence(row)
}

func queryListPresence(ctx context.Context, db executor, sessionID string) ([]*model.PresenceRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT session_id, legislator_id, present, justification, recorded_by, recorded_at
		FROM presence
		WHERE session_id = $1
		ORDER BY legislator_id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPresenceRecords(rows)
}

func queryCountPresent(ctx context.Context, db executor, sessionID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM presence WHERE session_id = $1 AND present`,
		sessionID,
	).Scan(&count)
	return count, err
}

// queryUpsertBallot inserts or replaces the ballot keyed by
// (proposal_id, legislator_id, round). The xmax check distinguishes a fresh
// insert from a superseded row.
func queryUpsertBallot(ctx context.Context, db executor, b *model.Ballot) (bool, error) {
	var wasUpdate bool
	err := db.QueryRowContext(ctx, `
		INSERT INTO ballots (proposal_id, legislator_id, round, session_id, choice, recorded_by, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (proposal_id, legislator_id, round) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			choice = EXCLUDED.choice,
			recorded_by = EXCLUDED.recorded_by,
			cast_at = EXCLUDED.cast_at
		RETURNING (xmax <> 0)`,
		b.ProposalID,
		b.LegislatorID,
		b.Round,
		b.SessionID,
		string(b.Choice),
		nullString(b.RecordedBy),
		b.CastAt,
	).Scan(&wasUpdate)
	return wasUpdate, err
}

func queryListBallots(ctx context.Context, db executor, proposalID string, round int) ([]*model.Ballot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT proposal_id, legislator_id, round, session_id, choice, recorded_by, cast_at
		FROM ballots
		WHERE proposal_id = $1 AND round = $2
		ORDER BY legislator_id`,
		proposalID, round,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBallots(rows)
}

func queryTallyBallots(ctx context.Context, db executor, proposalID string, round int) (model.Tally, error) {
	var t model.Tally
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN choice = 'yes' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN choice = 'no' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN choice = 'abstain' THEN 1 ELSE 0 END), 0)
		FROM ballots
		WHERE proposal_id = $1 AND round = $2`,
		proposalID, round,
	).Scan(&t.Yes, &t.No, &t.Abstain)
	if err != nil {
		return model.Tally{}, fmt.Errorf("tally ballots: %w", err)
	}
	return t, nil
}

// queryUpsertAggregation writes the aggregation for its key, replacing any
// prior one and bumping the version so superseded verdicts are detectable.
func queryUpsertAggregation(ctx context.Context, db executor, a *model.VoteAggregation) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO vote_aggregations (
			proposal_id, session_id, round, yes_count, no_count, abstain_count,
			outcome, quorum_type, rule_id, version, resolved_by, retroactive_note, finalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $11, $12)
		ON CONFLICT (proposal_id, session_id, round) DO UPDATE SET
			yes_count = EXCLUDED.yes_count,
			no_count = EXCLUDED.no_count,
			abstain_count = EXCLUDED.abstain_count,
			outcome = EXCLUDED.outcome,
			quorum_type = EXCLUDED.quorum_type,
			rule_id = EXCLUDED.rule_id,
			version = vote_aggregations.version + 1,
			resolved_by = EXCLUDED.resolved_by,
			retroactive_note = EXCLUDED.retroactive_note,
			finalized_at = EXCLUDED.finalized_at
		RETURNING version`,
		a.ProposalID,
		a.SessionID,
		a.Round,
		a.Tally.Yes,
		a.Tally.No,
		a.Tally.Abstain,
		string(a.Outcome),
		string(a.QuorumType),
		a.RuleID,
		nullString(a.ResolvedBy),
		nullString(a.RetroactiveNote),
		a.FinalizedAt,
	).Scan(&a.Version)
}

func queryGetAggregation(ctx context.Context, db executor, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+aggregationColumns+` FROM vote_aggregations
		WHERE proposal_id = $1 AND session_id = $2 AND round = $3`,
		proposalID, sessionID, round,
	)
	return scanAggregation(row)
}

func queryListAggregations(ctx context.Context, db executor) ([]*model.VoteAggregation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+aggregationColumns+` FROM vote_aggregations
		ORDER BY finalized_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAggregations(rows)
}

func queryAppendAudit(ctx context.Context, db executor, e *model.AuditEntry) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO audit_entries (session_id, actor, action, before_ref, after_ref, justification)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		e.SessionID,
		nullString(e.Actor),
		string(e.Action),
		nullString(e.BeforeRef),
		nullString(e.AfterRef),
		e.Justification,
	).Scan(&e.ID, &e.CreatedAt)
}

func queryListAudit(ctx context.Context, db executor, sessionID string) ([]*model.AuditEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, actor, action, before_ref, after_ref, justification, created_at
		FROM audit_entries
		WHERE session_id = $1
		ORDER BY created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditEntries(rows)
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, session_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, nullString(e.SessionID), nullString(e.Actor), []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}
