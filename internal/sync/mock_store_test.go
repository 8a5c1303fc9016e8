package sync

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// mockStore is a minimal in-memory store for archive tests.
type mockStore struct {
	sessions     map[string]*model.Session
	rules        map[string]*model.QuorumRule
	presence     map[string][]*model.PresenceRecord
	aggregations []*model.VoteAggregation
	audit        map[string][]*model.AuditEntry
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]*model.Session),
		rules:    make(map[string]*model.QuorumRule),
		presence: make(map[string][]*model.PresenceRecord),
		audit:    make(map[string][]*model.AuditEntry),
	}
}

func (m *mockStore) CreateSession(_ context.Context, session *model.Session) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) ListSessions(_ context.Context) ([]*model.Session, error) {
	var result []*model.Session
	for _, s := range m.sessions {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) UpdateSessionState(_ context.Context, id string, state model.SessionState, at time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.State = state
	s.UpdatedAt = at
	return nil
}

func (m *mockStore) GetDefaultQuorumRule(_ context.Context, app model.VotingApplication) (*model.QuorumRule, error) {
	for _, r := range m.rules {
		if r.Application == app && r.IsDefault {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) PutQuorumRule(_ context.Context, rule *model.QuorumRule) error {
	m.rules[rule.ID] = rule
	return nil
}

func (m *mockStore) ListQuorumRules(_ context.Context) ([]*model.QuorumRule, error) {
	var result []*model.QuorumRule
	for _, r := range m.rules {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) RuleIsReferenced(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (m *mockStore) UpsertPresence(_ context.Context, rec *model.PresenceRecord) error {
	m.presence[rec.SessionID] = append(m.presence[rec.SessionID], rec)
	return nil
}

func (m *mockStore) GetPresence(_ context.Context, sessionID, legislatorID string) (*model.PresenceRecord, error) {
	for _, rec := range m.presence[sessionID] {
		if rec.LegislatorID == legislatorID {
			return rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListPresence(_ context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	return m.presence[sessionID], nil
}

func (m *mockStore) CountPresent(_ context.Context, sessionID string) (int, error) {
	var count int
	for _, rec := range m.presence[sessionID] {
		if rec.Present {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) UpsertBallot(_ context.Context, _ *model.Ballot) (bool, error) {
	return false, nil
}

func (m *mockStore) ListBallots(_ context.Context, _ string, _ int) ([]*model.Ballot, error) {
	return nil, nil
}

func (m *mockStore) TallyBallots(_ context.Context, _ string, _ int) (model.Tally, error) {
	return model.Tally{}, nil
}

func (m *mockStore) UpsertAggregation(_ context.Context, agg *model.VoteAggregation) error {
	m.aggregations = append(m.aggregations, agg)
	return nil
}

func (m *mockStore) GetAggregation(_ context.Context, _, _ string, _ int) (*model.VoteAggregation, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListAggregations(_ context.Context) ([]*model.VoteAggregation, error) {
	return m.aggregations, nil
}

func (m *mockStore) AppendAudit(_ context.Context, entry *model.AuditEntry) error {
	m.audit[entry.SessionID] = append(m.audit[entry.SessionID], entry)
	return nil
}

func (m *mockStore) ListAudit(_ context.Context, sessionID string) ([]*model.AuditEntry, error) {
	return m.audit[sessionID], nil
}

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error {
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
