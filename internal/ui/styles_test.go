package ui

import (
	"testing"

	"github.com/plenumhq/plenum/internal/model"
)

func TestShouldUseColorEnv(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "")

	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR should disable color")
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should force color")
	}

	// NO_COLOR wins over CLICOLOR_FORCE.
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR should win over CLICOLOR_FORCE")
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("CLICOLOR=0 should disable color")
	}
}

func TestStateColorCoversAllStates(t *testing.T) {
	for _, state := range []model.SessionState{
		model.SessionScheduled,
		model.SessionInProgress,
		model.SessionConcluded,
		model.SessionCancelled,
	} {
		if StateColor(state) == nil {
			t.Errorf("no color for state %s", state)
		}
	}
}

func TestVerdictColor(t *testing.T) {
	if VerdictColor(true) == nil || VerdictColor(false) == nil {
		t.Fatal("verdict colors must be defined")
	}
	if VerdictColor(true).Equals(VerdictColor(false)) {
		t.Error("approved and rejected should render differently")
	}
}
