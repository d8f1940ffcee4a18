//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func goal(name string, state domain.GoalState) domain.Goal {
	return domain.Goal{GoalSetID: "gs-1", UniqueName: name, Name: name, Version: 1, State: state}
}

func staticSource(goals ...domain.Goal) GoalSource {
	return func(context.Context) ([]domain.Goal, error) {
		return goals, nil
	}
}

func TestPoll(t *testing.T) {
	msg := Poll(context.Background(), staticSource(goal("build", domain.StateSuccess)))()
	updated, ok := msg.(MsgGoalsUpdated)
	require.True(t, ok)
	assert.Len(t, updated.Goals, 1)

	failing := func(context.Context) ([]domain.Goal, error) {
		return nil, errors.New("store unavailable")
	}
	msg = Poll(context.Background(), failing)()
	failed, ok := msg.(MsgPollFailed)
	require.True(t, ok)
	assert.EqualError(t, failed.Err, "store unavailable")
}

func TestModel_GoalsUpdated_KeepsPolling(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)

	_, cmd := m.Update(MsgGoalsUpdated{Goals: []domain.Goal{
		goal("build", domain.StateSuccess),
		goal("deploy", domain.StateRequested),
	}})

	require.NotNil(t, cmd)
	assert.False(t, m.settled)
	assert.Len(t, m.Goals(), 2)
}

func TestModel_GoalsUpdated_QuitsWhenSettled(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)

	_, cmd := m.Update(MsgGoalsUpdated{Goals: []domain.Goal{
		goal("build", domain.StateSuccess),
		goal("deploy", domain.StateFailure),
	}})

	require.NotNil(t, cmd)
	assert.True(t, m.settled)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_GoalsUpdated_KeepsLatestVersion(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)
	newer := goal("build", domain.StateSuccess)
	newer.Version = 3

	m.Update(MsgGoalsUpdated{Goals: []domain.Goal{goal("build", domain.StateRequested), newer}})

	require.Len(t, m.Goals(), 1)
	assert.Equal(t, int64(3), m.Goals()[0].Version)
}

func TestModel_PollFailed(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)

	_, cmd := m.Update(MsgPollFailed{Err: errors.New("boom")})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, m.Err(), "boom")
	assert.Contains(t, m.View(), "boom")
}

func TestModel_Keys(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
}

func TestModel_View(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)
	m.height = 20
	deploy := goal("deploy", domain.StateFailure)
	deploy.Name = "Deploy to production"
	deploy.Description = "Failed: Deploy to production"
	lint := goal("lint", domain.StateSkipped)
	lint.Description = "Skipped: no changes"
	m.goals = []domain.Goal{goal("build", domain.StateSuccess), deploy, lint}

	g := goldie.New(t)
	g.Assert(t, "view_failed_set", []byte(m.View()))
}

func TestModel_View_Overflow(t *testing.T) {
	m := NewModel(context.Background(), "gs-1", staticSource(), time.Second)
	m.height = headerLines + 1
	m.goals = []domain.Goal{goal("a", domain.StateSuccess), goal("b", domain.StateSuccess)}

	out := m.View()

	assert.NotContains(t, out, " a\n")
	assert.Contains(t, out, " b\n")
}
