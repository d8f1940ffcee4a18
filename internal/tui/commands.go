// Package tui provides a terminal user interface for watching a goal set.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

// GoalSource returns the latest version of every goal in the watched set.
type GoalSource func(ctx context.Context) ([]domain.Goal, error)

// Poll returns a Bubble Tea command that reads the goal source once.
// It returns MsgGoalsUpdated on success or MsgPollFailed on error.
func Poll(ctx context.Context, source GoalSource) tea.Cmd {
	return func() tea.Msg {
		goals, err := source(ctx)
		if err != nil {
			return MsgPollFailed{Err: err}
		}
		return MsgGoalsUpdated{Goals: goals}
	}
}

func schedulePoll(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return msgPoll{}
	})
}
