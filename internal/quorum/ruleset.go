package quorum

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/plenumhq/plenum/internal/model"
)

// ruleSetFile is the on-disk TOML shape of a quorum rule set.
type ruleSetFile struct {
	Rules []ruleEntry `toml:"rules"`
}

type ruleEntry struct {
	Application             string   `toml:"application"`
	QuorumType              string   `toml:"quorum_type"`
	Base                    string   `toml:"calculation_base"`
	MinimumPercentage       *float64 `toml:"minimum_percentage"`
	MinimumCount            *int     `toml:"minimum_count"`
	AbstentionCountsAgainst bool     `toml:"abstention_counts_against"`
	RequiresRollCall        bool     `toml:"requires_roll_call"`
	ApprovalTemplate        string   `toml:"approval_template"`
	RejectionTemplate       string   `toml:"rejection_template"`
}

// LoadRuleSet parses a TOML rule-set file into validated quorum rules.
func LoadRuleSet(path string) ([]*model.QuorumRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet parses TOML rule-set content.
func ParseRuleSet(data []byte) ([]*model.QuorumRule, error) {
	var file ruleSetFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}

	rules := make([]*model.QuorumRule, 0, len(file.Rules))
	for i, e := range file.Rules {
		rule := &model.QuorumRule{
			Application:             model.VotingApplication(e.Application),
			QuorumType:              model.QuorumType(e.QuorumType),
			Base:                    model.CalculationBase(e.Base),
			MinimumPercentage:       e.MinimumPercentage,
			MinimumCount:            e.MinimumCount,
			AbstentionCountsAgainst: e.AbstentionCountsAgainst,
			RequiresRollCall:        e.RequiresRollCall,
			ApprovalTemplate:        e.ApprovalTemplate,
			RejectionTemplate:       e.RejectionTemplate,
			IsDefault:               true,
		}
		if err := model.ValidateQuorumRule(rule); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, e.Application, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultRules returns the built-in rule set covering every voting
// application, used when no rule-set file is configured.
func DefaultRules() []*model.QuorumRule {
	return []*model.QuorumRule{
		{
			Application: model.AppSessionOpening,
			QuorumType:  model.AbsoluteMajority,
			Base:        model.BaseTotalMandates,
		},
		{
			Application: model.AppSimpleVote,
			QuorumType:  model.SimpleMajority,
			Base:        model.BasePresentMembers,
		},
		{
			Application: model.AppAbsoluteVote,
			QuorumType:  model.AbsoluteMajority,
			Base:        model.BaseTotalMembers,
		},
		{
			Application:      model.AppTwoThirdsVote,
			QuorumType:       model.TwoThirds,
			Base:             model.BaseTotalMembers,
			RequiresRollCall: true,
		},
		{
			Application:      model.AppThreeFifthsVote,
			QuorumType:       model.ThreeFifths,
			Base:             model.BaseTotalMembers,
			RequiresRollCall: true,
		},
		{
			Application: model.AppUnanimousConsent,
			QuorumType:  model.Unanimity,
			Base:        model.BasePresentMembers,
		},
		{
			Application:      model.AppVetoOverride,
			QuorumType:       model.TwoThirds,
			Base:             model.BaseTotalMandates,
			RequiresRollCall: true,
		},
		{
			Application: model.AppCommitteeVote,
			QuorumType:  model.SimpleMajority,
			Base:        model.BasePresentMembers,
		},
	}
}
