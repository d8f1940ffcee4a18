package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/ui/style"
)

// headerLines is the number of lines used above the goal list.
const headerLines = 2

type styles struct {
	header      lipgloss.Style
	description lipgloss.Style
	err         lipgloss.Style
}

// Model is the Bubble Tea model that follows the states of one goal set.
type Model struct {
	ctx      context.Context
	source   GoalSource
	setID    string
	interval time.Duration

	goals   []domain.Goal
	err     error
	settled bool

	width   int
	height  int
	spinner spinner.Model
	styles  styles
}

// NewModel creates a model that reads source every interval.
func NewModel(ctx context.Context, setID string, source GoalSource, interval time.Duration) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(style.Iris)

	return &Model{
		ctx:      ctx,
		source:   source,
		setID:    setID,
		interval: interval,
		spinner:  s,
		styles: styles{
			header:      lipgloss.NewStyle().Bold(true),
			description: lipgloss.NewStyle().Foreground(style.Slate),
			err:         lipgloss.NewStyle().Foreground(style.Red),
		},
	}
}

// Err returns the error that stopped the model, if any.
func (m *Model) Err() error {
	return m.err
}

// Goals returns the goals of the last successful poll.
func (m *Model) Goals() []domain.Goal {
	return m.goals
}

// Init initializes the model and starts reading from the goal source.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		Poll(m.ctx, m.source),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case msgPoll:
		return m, Poll(m.ctx, m.source)
	case MsgGoalsUpdated:
		return m.handleGoalsUpdated(msg)
	case MsgPollFailed:
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// handleGoalsUpdated stores the new snapshot and stops once every goal is terminal.
func (m *Model) handleGoalsUpdated(msg MsgGoalsUpdated) (tea.Model, tea.Cmd) {
	m.goals = domain.NewGoalSet(m.setID, msg.Goals).Goals
	if len(m.goals) > 0 && allTerminal(m.goals) {
		m.settled = true
		return m, tea.Quit
	}
	return m, schedulePoll(m.interval)
}

func allTerminal(goals []domain.Goal) bool {
	for _, g := range goals {
		if !g.State.IsTerminal() {
			return false
		}
	}
	return true
}

// View renders the current state of the model as a string.
func (m *Model) View() string {
	var s strings.Builder

	set := domain.GoalSet{ID: m.setID, Goals: m.goals}
	s.WriteString(m.styles.header.Render(fmt.Sprintf("Goal set %s", m.setID)))
	if len(m.goals) > 0 {
		s.WriteString("  " + string(set.State()))
	}
	s.WriteString("\n\n")

	// Keep the newest goals visible when the list overflows.
	start := 0
	if m.height > headerLines && len(m.goals) > m.height-headerLines {
		start = len(m.goals) - (m.height - headerLines)
	}

	for _, g := range m.goals[start:] {
		icon, color := style.ForState(g.State)
		if g.State == domain.StateInProcess && !m.settled {
			icon = m.spinner.View()
		} else {
			icon = lipgloss.NewStyle().Foreground(color).Render(icon)
		}

		line := fmt.Sprintf("%s %s", icon, goalLabel(g))
		if g.Description != "" {
			line += "  " + m.styles.description.Render(g.Description)
		}
		s.WriteString(line + "\n")
	}

	if m.err != nil {
		s.WriteString(m.styles.err.Render(m.err.Error()) + "\n")
	}
	return s.String()
}

func goalLabel(g domain.Goal) string {
	if g.Name != "" && g.Name != g.UniqueName {
		return fmt.Sprintf("%s (%s)", g.Name, g.UniqueName)
	}
	return g.UniqueName
}
