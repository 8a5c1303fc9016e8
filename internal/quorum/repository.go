package quorum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plenumhq/plenum/internal/idgen"
	"github.com/plenumhq/plenum/internal/model"
	"github.com/plenumhq/plenum/internal/store"
)

// Repository looks up and manages quorum rules on top of the store.
type Repository struct {
	store store.Store
}

// NewRepository returns a Repository backed by the given store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// Lookup returns the default rule bound to the given voting application.
// A missing binding is an explicit ErrUnknownQuorumRule, never a fallback.
func (r *Repository) Lookup(ctx context.Context, app model.VotingApplication) (*model.QuorumRule, error) {
	return LookupRule(ctx, r.store, app)
}

// LookupRule resolves the default rule for an application against any store,
// including a transaction-scoped one.
func LookupRule(ctx context.Context, s store.Store, app model.VotingApplication) (*model.QuorumRule, error) {
	if !app.IsValid() {
		return nil, fmt.Errorf("application %q: %w", app, model.ErrUnknownQuorumRule)
	}
	rule, err := s.GetDefaultQuorumRule(ctx, app)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %q: %w", app, model.ErrUnknownQuorumRule)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup quorum rule: %w", err)
	}
	return rule, nil
}

// Put validates and upserts a rule. Rules already referenced by a finalized
// aggregation are immutable; attempting to change one fails with
// ErrRuleConflict so historical verdicts keep their meaning.
func (r *Repository) Put(ctx context.Context, rule *model.QuorumRule) error {
	if err := model.ValidateQuorumRule(rule); err != nil {
		return err
	}
	if rule.ID == "" {
		id, err := idgen.GenerateWithPrefix("rule-")
		if err != nil {
			return err
		}
		rule.ID = id
	}

	return r.store.RunInTransaction(ctx, func(tx store.Store) error {
		referenced, err := tx.RuleIsReferenced(ctx, rule.ID)
		if err != nil {
			return fmt.Errorf("check rule references: %w", err)
		}
		if referenced {
			return fmt.Errorf("rule %s is referenced by a finalized aggregation: %w",
				rule.ID, model.ErrRuleConflict)
		}

		now := time.Now().UTC()
		if rule.CreatedAt.IsZero() {
			rule.CreatedAt = now
		}
		rule.UpdatedAt = now
		return tx.PutQuorumRule(ctx, rule)
	})
}

// List returns all stored rules ordered by application.
func (r *Repository) List(ctx context.Context) ([]*model.QuorumRule, error) {
	return r.store.ListQuorumRules(ctx)
}

// Seed stores every rule in the set that has no default bound to its
// application yet. Existing bindings are left untouched. It returns the
// number of rules inserted.
func (r *Repository) Seed(ctx context.Context, rules []*model.QuorumRule) (int, error) {
	var inserted int
	for _, rule := range rules {
		_, err := r.store.GetDefaultQuorumRule(ctx, rule.Application)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return inserted, fmt.Errorf("check existing rule for %s: %w", rule.Application, err)
		}
		rule.IsDefault = true
		if err := r.Put(ctx, rule); err != nil {
			return inserted, fmt.Errorf("seed rule for %s: %w", rule.Application, err)
		}
		inserted++
	}
	return inserted, nil
}
