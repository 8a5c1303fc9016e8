// Package sync exports the legislative record as JSONL and ships it to
// archival destinations on a schedule.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version          string    `json:"version"`
	Type             string    `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	SessionCount     int       `json:"session_count"`
	RuleCount        int       `json:"rule_count"`
	AggregationCount int       `json:"aggregation_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// sessionRecord embeds a session's presence ledger and audit trail so each
// line of the archive is self-contained.
type sessionRecord struct {
	Session  *model.Session          `json:"session"`
	Presence []*model.PresenceRecord `json:"presence,omitempty"`
	Audit    []*model.AuditEntry     `json:"audit,omitempty"`
}

// ExportJSONL writes the full legislative record from the store as JSONL to w:
// a header line, then sessions (with embedded presence and audit trail)
// sorted by ID, then quorum rules, then vote aggregations.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})

	records := make([]sessionRecord, len(sessions))
	for i, session := range sessions {
		presence, err := s.ListPresence(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("list presence for %s: %w", session.ID, err)
		}
		audit, err := s.ListAudit(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("list audit for %s: %w", session.ID, err)
		}
		records[i] = sessionRecord{Session: session, Presence: presence, Audit: audit}
	}

	rules, err := s.ListQuorumRules(ctx)
	if err != nil {
		return fmt.Errorf("list quorum rules: %w", err)
	}

	aggregations, err := s.ListAggregations(ctx)
	if err != nil {
		return fmt.Errorf("list aggregations: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:          "1",
		Type:             "header",
		Timestamp:        time.Now().UTC(),
		SessionCount:     len(sessions),
		RuleCount:        len(rules),
		AggregationCount: len(aggregations),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, r := range records {
		if err := enc.Encode(record{Type: "session", Data: r}); err != nil {
			return fmt.Errorf("encode session %s: %w", r.Session.ID, err)
		}
	}
	for _, r := range rules {
		if err := enc.Encode(record{Type: "rule", Data: r}); err != nil {
			return fmt.Errorf("encode rule %s: %w", r.ID, err)
		}
	}
	for _, a := range aggregations {
		if err := enc.Encode(record{Type: "aggregation", Data: a}); err != nil {
			return fmt.Errorf("encode aggregation %s/%d: %w", a.ProposalID, a.Round, err)
		}
	}

	return nil
}
