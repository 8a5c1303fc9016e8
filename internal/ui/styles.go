package ui

import (
	"github.com/fatih/color"

	"github.com/plenumhq/plenum/internal/model"
)

// StateColor returns the color used to render a session state.
func StateColor(state model.SessionState) *color.Color {
	switch state {
	case model.SessionInProgress:
		return color.New(color.FgGreen)
	case model.SessionConcluded:
		return color.New(color.FgBlue)
	case model.SessionCancelled:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

// VerdictColor returns the color used to render a resolved vote outcome.
func VerdictColor(approved bool) *color.Color {
	if approved {
		return color.New(color.FgGreen, color.Bold)
	}
	return color.New(color.FgRed, color.Bold)
}
