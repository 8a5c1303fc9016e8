package quorum

import (
	"strings"
	"testing"

	"github.com/plenumhq/plenum/internal/model"
)

func rule(t model.QuorumType, base model.CalculationBase) *model.QuorumRule {
	return &model.QuorumRule{
		ID:          "rule-test",
		Application: model.AppSimpleVote,
		QuorumType:  t,
		Base:        base,
	}
}

func TestResolveAbsoluteMajority(t *testing.T) {
	// base=11, threshold floor(11/2)+1 = 6.
	v := Resolve(rule(model.AbsoluteMajority, model.BaseTotalMembers),
		model.Tally{Yes: 6, No: 3, Abstain: 1}, 11, 10)
	if !v.Approved {
		t.Errorf("expected approval, got %+v", v)
	}

	v = Resolve(rule(model.AbsoluteMajority, model.BaseTotalMembers),
		model.Tally{Yes: 5, No: 3, Abstain: 1}, 11, 10)
	if v.Approved {
		t.Errorf("expected rejection at 5 of 11, got %+v", v)
	}
}

func TestResolveTwoThirds(t *testing.T) {
	// base=9, threshold ceil(9*2/3) = 6.
	v := Resolve(rule(model.TwoThirds, model.BasePresentMembers),
		model.Tally{Yes: 5, No: 4}, 11, 9)
	if v.Approved {
		t.Errorf("expected rejection at 5 of 9, got %+v", v)
	}

	v = Resolve(rule(model.TwoThirds, model.BasePresentMembers),
		model.Tally{Yes: 6, No: 3}, 11, 9)
	if !v.Approved {
		t.Errorf("expected approval at 6 of 9, got %+v", v)
	}
}

func TestResolveThreeFifths(t *testing.T) {
	// base=11, threshold ceil(11*3/5) = 7.
	for _, tc := range []struct {
		yes  int
		want bool
	}{
		{6, false},
		{7, true},
		{8, true},
	} {
		v := Resolve(rule(model.ThreeFifths, model.BaseTotalMandates),
			model.Tally{Yes: tc.yes, No: 11 - tc.yes}, 11, 11)
		if v.Approved != tc.want {
			t.Errorf("yes=%d: approved=%v, want %v", tc.yes, v.Approved, tc.want)
		}
	}
}

func TestResolveSimpleMajorityAbstentionsAgainst(t *testing.T) {
	r := rule(model.SimpleMajority, model.BasePresentMembers)
	r.AbstentionCountsAgainst = true

	// against = 1 + 2 = 3; yes(3) > against(3) is false.
	v := Resolve(r, model.Tally{Yes: 3, No: 1, Abstain: 2}, 10, 6)
	if v.Approved {
		t.Errorf("expected rejection when abstentions count against, got %+v", v)
	}

	r.AbstentionCountsAgainst = false
	v = Resolve(r, model.Tally{Yes: 3, No: 1, Abstain: 2}, 10, 6)
	if !v.Approved {
		t.Errorf("expected approval when abstentions are neutral, got %+v", v)
	}
}

func TestResolveUnanimity(t *testing.T) {
	v := Resolve(rule(model.Unanimity, model.BasePresentMembers),
		model.Tally{Yes: 5}, 11, 5)
	if !v.Approved {
		t.Errorf("expected unanimous approval, got %+v", v)
	}

	// An abstention breaks unanimity even with zero "no" votes.
	v = Resolve(rule(model.Unanimity, model.BasePresentMembers),
		model.Tally{Yes: 5, Abstain: 1}, 11, 6)
	if v.Approved {
		t.Errorf("abstention should break unanimity, got %+v", v)
	}

	v = Resolve(rule(model.Unanimity, model.BasePresentMembers),
		model.Tally{Yes: 5, No: 1}, 11, 6)
	if v.Approved {
		t.Errorf("dissent should break unanimity, got %+v", v)
	}
}

func TestResolveMinimumPercentageOverride(t *testing.T) {
	pct := 40.0
	r := rule(model.AbsoluteMajority, model.BaseTotalMembers)
	r.MinimumPercentage = &pct

	// 5 of 11 misses the absolute-majority threshold of 6, but
	// 5/11 = 45.5% clears the 40% override.
	v := Resolve(r, model.Tally{Yes: 5, No: 6}, 11, 11)
	if !v.Approved {
		t.Errorf("percentage override should approve, got %+v", v)
	}
	if !strings.Contains(v.Detail, "percentage override") {
		t.Errorf("detail should mention the override, got %q", v.Detail)
	}

	// 4 of 11 = 36.4% misses both.
	v = Resolve(r, model.Tally{Yes: 4, No: 7}, 11, 11)
	if v.Approved {
		t.Errorf("4 of 11 should still be rejected, got %+v", v)
	}
}

func TestResolveMinimumCountOverride(t *testing.T) {
	count := 4
	r := rule(model.TwoThirds, model.BasePresentMembers)
	r.MinimumCount = &count

	// 4 of 9 misses the two-thirds threshold of 6 but meets the raw count.
	v := Resolve(r, model.Tally{Yes: 4, No: 5}, 11, 9)
	if !v.Approved {
		t.Errorf("count override should approve, got %+v", v)
	}

	v = Resolve(r, model.Tally{Yes: 3, No: 6}, 11, 9)
	if v.Approved {
		t.Errorf("3 of 9 should still be rejected, got %+v", v)
	}
}

// Overrides can only flip a rejection to an approval, never the reverse.
func TestResolveOverridesNeverReject(t *testing.T) {
	pct := 90.0
	count := 100
	r := rule(model.SimpleMajority, model.BasePresentMembers)
	r.MinimumPercentage = &pct
	r.MinimumCount = &count

	v := Resolve(r, model.Tally{Yes: 6, No: 3}, 11, 9)
	if !v.Approved {
		t.Errorf("unmet overrides must not reject a formula approval, got %+v", v)
	}
}

// Increasing yes votes while holding everything else fixed never flips an
// approval back to a rejection.
func TestResolveMonotonic(t *testing.T) {
	pct := 50.0
	count := 8
	for _, qt := range []model.QuorumType{
		model.SimpleMajority, model.AbsoluteMajority, model.TwoThirds, model.ThreeFifths, model.Unanimity,
	} {
		for _, withOverrides := range []bool{false, true} {
			r := rule(qt, model.BasePresentMembers)
			if withOverrides {
				r.MinimumPercentage = &pct
				r.MinimumCount = &count
			}
			prev := false
			for yes := 0; yes <= 15; yes++ {
				v := Resolve(r, model.Tally{Yes: yes, No: 3}, 20, 15)
				if prev && !v.Approved {
					t.Errorf("%s (overrides=%v): approval lost when yes went to %d", qt, withOverrides, yes)
				}
				prev = v.Approved
			}
		}
	}
}

func TestResolveMessageTemplates(t *testing.T) {
	r := rule(model.SimpleMajority, model.BasePresentMembers)
	r.ApprovalTemplate = "Motion carries"
	r.RejectionTemplate = "Motion fails"

	if v := Resolve(r, model.Tally{Yes: 2, No: 1}, 5, 3); v.Message != "Motion carries" {
		t.Errorf("Message = %q, want approval template", v.Message)
	}
	if v := Resolve(r, model.Tally{Yes: 1, No: 2}, 5, 3); v.Message != "Motion fails" {
		t.Errorf("Message = %q, want rejection template", v.Message)
	}

	bare := rule(model.SimpleMajority, model.BasePresentMembers)
	if v := Resolve(bare, model.Tally{Yes: 1, No: 2}, 5, 3); v.Message != "Rejected by insufficient quorum" {
		t.Errorf("Message = %q, want generic rejection", v.Message)
	}
	if v := Resolve(bare, model.Tally{Yes: 2, No: 1}, 5, 3); v.Message != "Approved" {
		t.Errorf("Message = %q, want generic approval", v.Message)
	}
}

func TestQuorumToClose(t *testing.T) {
	for _, tc := range []struct {
		present, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{10, 6},
		{11, 6},
	} {
		if got := QuorumToClose(tc.present); got != tc.want {
			t.Errorf("QuorumToClose(%d) = %d, want %d", tc.present, got, tc.want)
		}
	}
}
