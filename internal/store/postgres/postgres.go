// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.db, session)
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.db, id)
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return queryListSessions(ctx, s.db)
}

func (s *PostgresStore) UpdateSessionState(ctx context.Context, id string, state model.SessionState, at time.Time) error {
	return queryUpdateSessionState(ctx, s.db, id, state, at)
}

func (s *PostgresStore) GetDefaultQuorumRule(ctx context.Context, app model.VotingApplication) (*model.QuorumRule, error) {
	return queryGetDefaultQuorumRule(ctx, s.db, app)
}

func (s *PostgresStore) PutQuorumRule(ctx context.Context, rule *model.QuorumRule) error {
	return queryPutQuorumRule(ctx, s.db, rule)
}

func (s *PostgresStore) ListQuorumRules(ctx context.Context) ([]*model.QuorumRule, error) {
	return queryListQuorumRules(ctx, s.db)
}

func (s *PostgresStore) RuleIsReferenced(ctx context.Context, ruleID string) (bool, error) {
	return queryRuleIsReferenced(ctx, s.db, ruleID)
}

func (s *PostgresStore) UpsertPresence(ctx context.Context, rec *model.PresenceRecord) error {
	return queryUpsertPresence(ctx, s.db, rec)
}

func (s *PostgresStore) GetPresence(ctx context.Context, sessionID, legislatorID string) (*model.PresenceRecord, error) {
	return queryGetPresence(ctx, s.db, sessionID, legislatorID)
}

func (s *PostgresStore) ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	return queryListPresence(ctx, s.db, sessionID)
}

func (s *PostgresStore) CountPresent(ctx context.Context, sessionID string) (int, error) {
	return queryCountPresent(ctx, s.db, sessionID)
}

func (s *PostgresStore) UpsertBallot(ctx context.Context, ballot *model.Ballot) (bool, error) {
	return queryUpsertBallot(ctx, s.db, ballot)
}

func (s *PostgresStore) ListBallots(ctx context.Context, proposalID string, round int) ([]*model.Ballot, error) {
	return queryListBallots(ctx, s.db, proposalID, round)
}

func (s *PostgresStore) TallyBallots(ctx context.Context, proposalID string, round int) (model.Tally, error) {
	return queryTallyBallots(ctx, s.db, proposalID, round)
}

func (s *PostgresStore) UpsertAggregation(ctx context.Context, agg *model.VoteAggregation) error {
	return queryUpsertAggregation(ctx, s.db, agg)
}

func (s *PostgresStore) GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	return queryGetAggregation(ctx, s.db, proposalID, sessionID, round)
}

func (s *PostgresStore) ListAggregations(ctx context.Context) ([]*model.VoteAggregation, error) {
	return queryListAggregations(ctx, s.db)
}

func (s *PostgresStore) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	return queryAppendAudit(ctx, s.db, entry)
}

func (s *PostgresStore) ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error) {
	return queryListAudit(ctx, s.db, sessionID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateSession(ctx context.Context, session *model.Session) error {
	return queryCreateSession(ctx, s.tx, session)
}

func (s *txStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return queryGetSession(ctx, s.tx, id)
}

func (s *txStore) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return queryListSessions(ctx, s.tx)
}

func (s *txStore) UpdateSessionState(ctx context.Context, id string, state model.SessionState, at time.Time) error {
	return queryUpdateSessionState(ctx, s.tx, id, state, at)
}

func (s *txStore) GetDefaultQuorumRule(ctx context.Context, app model.VotingApplication) (*model.QuorumRule, error) {
	return queryGetDefaultQuorumRule(ctx, s.tx, app)
}

func (s *txStore) PutQuorumRule(ctx context.Context, rule *model.QuorumRule) error {
	return queryPutQuorumRule(ctx, s.tx, rule)
}

func (s *txStore) ListQuorumRules(ctx context.Context) ([]*model.QuorumRule, error) {
	return queryListQuorumRules(ctx, s.tx)
}

func (s *txStore) RuleIsReferenced(ctx context.Context, ruleID string) (bool, error) {
	return queryRuleIsReferenced(ctx, s.tx, ruleID)
}

func (s *txStore) UpsertPresence(ctx context.Context, rec *model.PresenceRecord) error {
	return queryUpsertPresence(ctx, s.tx, rec)
}

func (s *txStore) GetPresence(ctx context.Context, sessionID, legislatorID string) (*model.PresenceRecord, error) {
	return queryGetPresence(ctx, s.tx, sessionID, legislatorID)
}

func (s *txStore) ListPresence(ctx context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	return queryListPresence(ctx, s.tx, sessionID)
}

func (s *txStore) CountPresent(ctx context.Context, sessionID string) (int, error) {
	return queryCountPresent(ctx, s.tx, sessionID)
}

func (s *txStore) UpsertBallot(ctx context.Context, ballot *model.Ballot) (bool, error) {
	return queryUpsertBallot(ctx, s.tx, ballot)
}

func (s *txStore) ListBallots(ctx context.Context, proposalID string, round int) ([]*model.Ballot, error) {
	return queryListBallots(ctx, s.tx, proposalID, round)
}

func (s *txStore) TallyBallots(ctx context.Context, proposalID string, round int) (model.Tally, error) {
	return queryTallyBallots(ctx, s.tx, proposalID, round)
}

func (s *txStore) UpsertAggregation(ctx context.Context, agg *model.VoteAggregation) error {
	return queryUpsertAggregation(ctx, s.tx, agg)
}

func (s *txStore) GetAggregation(ctx context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	return queryGetAggregation(ctx, s.tx, proposalID, sessionID, round)
}

func (s *txStore) ListAggregations(ctx context.Context) ([]*model.VoteAggregation, error) {
	return queryListAggregations(ctx, s.tx)
}

func (s *txStore) AppendAudit(ctx context.Context, entry *model.AuditEntry) error {
	return queryAppendAudit(ctx, s.tx, entry)
}

func (s *txStore) ListAudit(ctx context.Context, sessionID string) ([]*model.AuditEntry, error) {
	return queryListAudit(ctx, s.tx, sessionID)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
