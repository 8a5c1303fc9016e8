package voting

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// mockStore is a minimal in-memory store for voting service tests.
type mockStore struct {
	sessions     map[string]*model.Session
	rules        map[string]*model.QuorumRule
	presence     map[string]*model.PresenceRecord
	ballots      map[string]*model.Ballot
	aggregations map[string]*model.VoteAggregation
	audit        []*model.AuditEntry
	events       []*model.Event
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions:     make(map[string]*model.Session),
		rules:        make(map[string]*model.QuorumRule),
		presence:     make(map[string]*model.PresenceRecord),
		ballots:      make(map[string]*model.Ballot),
		aggregations: make(map[string]*model.VoteAggregation),
	}
}

func presenceKey(sessionID, legislatorID string) string {
	return sessionID + "|" + legislatorID
}

func ballotKey(proposalID, legislatorID string, round int) string {
	return fmt.Sprintf("%s|%s|%d", proposalID, legislatorID, round)
}

func aggregationKey(proposalID, sessionID string, round int) string {
	return fmt.Sprintf("%s|%s|%d", proposalID, sessionID, round)
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
	switch state {
	case model.SessionInProgress:
		s.OpenedAt = &at
	case model.SessionConcluded:
		s.ConcludedAt = &at
	}
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

func (m *mockStore) RuleIsReferenced(_ context.Context, ruleID string) (bool, error) {
	for _, a := range m.aggregations {
		if a.RuleID == ruleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) UpsertPresence(_ context.Context, rec *model.PresenceRecord) error {
	m.presence[presenceKey(rec.SessionID, rec.LegislatorID)] = rec
	return nil
}

func (m *mockStore) GetPresence(_ context.Context, sessionID, legislatorID string) (*model.PresenceRecord, error) {
	rec, ok := m.presence[presenceKey(sessionID, legislatorID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rec, nil
}

func (m *mockStore) ListPresence(_ context.Context, sessionID string) ([]*model.PresenceRecord, error) {
	var result []*model.PresenceRecord
	for _, rec := range m.presence {
		if rec.SessionID == sessionID {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LegislatorID < result[j].LegislatorID })
	return result, nil
}

func (m *mockStore) CountPresent(_ context.Context, sessionID string) (int, error) {
	var count int
	for _, rec := range m.presence {
		if rec.SessionID == sessionID && rec.Present {
			count++
		}
	}
	return count, nil
}

func (m *mockStore) UpsertBallot(_ context.Context, ballot *model.Ballot) (bool, error) {
	key := ballotKey(ballot.ProposalID, ballot.LegislatorID, ballot.Round)
	_, wasUpdate := m.ballots[key]
	m.ballots[key] = ballot
	return wasUpdate, nil
}

func (m *mockStore) ListBallots(_ context.Context, proposalID string, round int) ([]*model.Ballot, error) {
	var result []*model.Ballot
	for _, b := range m.ballots {
		if b.ProposalID == proposalID && b.Round == round {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LegislatorID < result[j].LegislatorID })
	return result, nil
}

func (m *mockStore) TallyBallots(_ context.Context, proposalID string, round int) (model.Tally, error) {
	var tally model.Tally
	for _, b := range m.ballots {
		if b.ProposalID != proposalID || b.Round != round {
			continue
		}
		switch b.Choice {
		case model.ChoiceYes:
			tally.Yes++
		case model.ChoiceNo:
			tally.No++
		case model.ChoiceAbstain:
			tally.Abstain++
		}
	}
	return tally, nil
}

func (m *mockStore) UpsertAggregation(_ context.Context, agg *model.VoteAggregation) error {
	key := aggregationKey(agg.ProposalID, agg.SessionID, agg.Round)
	if prior, ok := m.aggregations[key]; ok {
		agg.Version = prior.Version + 1
	} else {
		agg.Version = 1
	}
	m.aggregations[key] = agg
	return nil
}

func (m *mockStore) GetAggregation(_ context.Context, proposalID, sessionID string, round int) (*model.VoteAggregation, error) {
	agg, ok := m.aggregations[aggregationKey(proposalID, sessionID, round)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return agg, nil
}

func (m *mockStore) ListAggregations(_ context.Context) ([]*model.VoteAggregation, error) {
	var result []*model.VoteAggregation
	for _, a := range m.aggregations {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return aggregationKey(result[i].ProposalID, result[i].SessionID, result[i].Round) <
			aggregationKey(result[j].ProposalID, result[j].SessionID, result[j].Round)
	})
	return result, nil
}

func (m *mockStore) AppendAudit(_ context.Context, entry *model.AuditEntry) error {
	entry.ID = int64(len(m.audit) + 1)
	m.audit = append(m.audit, entry)
	return nil
}

func (m *mockStore) ListAudit(_ context.Context, sessionID string) ([]*model.AuditEntry, error) {
	var result []*model.AuditEntry
	for _, e := range m.audit {
		if e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}

// mockPublisher captures published events for assertions.
type mockPublisher struct {
	published []publishedEvent
}

type publishedEvent struct {
	topic string
	event any
}

func (p *mockPublisher) Publish(_ context.Context, topic string, event any) error {
	p.published = append(p.published, publishedEvent{topic: topic, event: event})
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) topics() []string {
	result := make([]string, len(p.published))
	for i, pe := range p.published {
		result[i] = pe.topic
	}
	return result
}
