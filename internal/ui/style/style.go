// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
	Pause   = "‖"
)

// ForState returns the icon and color used to render a goal state.
func ForState(s domain.GoalState) (string, lipgloss.Color) {
	switch s {
	case domain.StateSuccess:
		return Check, Green
	case domain.StateFailure:
		return Cross, Red
	case domain.StateInProcess:
		return Dot, Iris
	case domain.StateWaitingForApproval, domain.StateWaitingForPreApproval:
		return Pause, Yellow
	case domain.StateSkipped, domain.StateStopped, domain.StateCanceled:
		return Tilde, Slate
	default:
		return Circle, Slate
	}
}
