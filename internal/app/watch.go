package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/tui"
	"go.trai.ch/zerr"
)

// WithTeaOptions sets the Bubble Tea program options used by Watch.
// This is primarily used for testing.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = opts
	return a
}

// Watch renders the states of a goal set until every goal is terminal or the
// user quits.
func (a *App) Watch(ctx context.Context, goalSetID string) error {
	interval := a.cfg.Serve.PollInterval
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}

	source := func(ctx context.Context) ([]domain.Goal, error) {
		return a.List(ctx, domain.GoalQuery{GoalSetID: goalSetID})
	}
	model := tui.NewModel(ctx, goalSetID, source, interval)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, a.teaOptions...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return zerr.Wrap(err, "failed to run goal set view")
	}
	return model.Err()
}
