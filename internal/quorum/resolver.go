// Package quorum resolves vote tallies against quorum rules.
//
// Resolve is a pure function: no I/O, no clock, no store access. The
// Repository provides rule lookup by voting application on top of the store.
package quorum

import (
	"fmt"

	"github.com/plenumhq/plenum/internal/model"
)

// Verdict is the resolver's output: the approval decision, a user-facing
// message taken from the rule's templates, and a breakdown of the numbers
// that produced the decision.
type Verdict struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
	Detail   string `json:"detail"`
}

// Resolve decides whether a tally satisfies the given quorum rule.
//
// Thresholds are computed against the rule's calculation base using exact
// integer arithmetic: absolute majority is floor(base/2)+1, two-thirds is
// ceil(base*2/3), three-fifths is ceil(base*3/5). Two optional overrides
// (minimum percentage of base, minimum raw yes count) are evaluated after
// the formula and OR'd in: they can flip a rejection to an approval but
// never the reverse.
func Resolve(rule *model.QuorumRule, tally model.Tally, totalMembers, presentMembers int) Verdict {
	base := presentMembers
	if rule.Base == model.BaseTotalMembers || rule.Base == model.BaseTotalMandates {
		base = totalMembers
	}

	against := tally.No
	if rule.AbstentionCountsAgainst {
		against += tally.Abstain
	}

	var (
		approved  bool
		threshold int
		detail    string
	)

	switch rule.QuorumType {
	case model.SimpleMajority:
		approved = tally.Yes > against
		detail = fmt.Sprintf("%d in favor vs %d against (simple majority)", tally.Yes, against)
	case model.AbsoluteMajority:
		threshold = base/2 + 1
		approved = tally.Yes >= threshold
		detail = fmt.Sprintf("%d in favor, threshold %d of %d (absolute majority)", tally.Yes, threshold, base)
	case model.TwoThirds:
		threshold = ceilDiv(base*2, 3)
		approved = tally.Yes >= threshold
		detail = fmt.Sprintf("%d in favor, threshold %d of %d (two thirds)", tally.Yes, threshold, base)
	case model.ThreeFifths:
		threshold = ceilDiv(base*3, 5)
		approved = tally.Yes >= threshold
		detail = fmt.Sprintf("%d in favor, threshold %d of %d (three fifths)", tally.Yes, threshold, base)
	case model.Unanimity:
		// Any abstention or dissent breaks unanimity, even with zero "no" votes.
		approved = tally.Yes >= presentMembers && tally.No == 0 && tally.Abstain == 0
		detail = fmt.Sprintf("%d of %d present in favor, %d against, %d abstaining (unanimity)",
			tally.Yes, presentMembers, tally.No, tally.Abstain)
	}

	// Overrides are structurally separate from the formula and OR'd in.
	if !approved && minimumPercentageMet(rule, tally.Yes, base) {
		approved = true
		detail += fmt.Sprintf("; minimum percentage override met (%g%% of %d)", *rule.MinimumPercentage, base)
	}
	if !approved && minimumCountMet(rule, tally.Yes) {
		approved = true
		detail += fmt.Sprintf("; minimum count override met (%d in favor)", tally.Yes)
	}

	return Verdict{
		Approved: approved,
		Message:  message(rule, approved),
		Detail:   detail,
	}
}

func minimumPercentageMet(rule *model.QuorumRule, yes, base int) bool {
	if rule.MinimumPercentage == nil || base <= 0 {
		return false
	}
	return float64(yes)*100 >= *rule.MinimumPercentage*float64(base)
}

func minimumCountMet(rule *model.QuorumRule, yes int) bool {
	return rule.MinimumCount != nil && yes >= *rule.MinimumCount
}

func message(rule *model.QuorumRule, approved bool) string {
	if approved {
		if rule.ApprovalTemplate != "" {
			return rule.ApprovalTemplate
		}
		return "Approved"
	}
	if rule.RejectionTemplate != "" {
		return rule.RejectionTemplate
	}
	return "Rejected by insufficient quorum"
}

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// QuorumToClose is the minimum number of cast ballots required before a
// round may be finalized at all: a simple majority of present members.
func QuorumToClose(presentMembers int) int {
	return presentMembers/2 + 1
}
