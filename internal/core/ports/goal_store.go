package ports

import (
	"context"

	"go.trai.ch/goalkeeper/internal/core/domain"
)

// GoalStore is the append-only persistence for goal versions.
//
//go:generate mockgen -source=goal_store.go -destination=mocks/mock_goal_store.go -package=mocks
type GoalStore interface {
	// Query returns the latest version of every goal matching q.
	Query(ctx context.Context, q domain.GoalQuery) ([]domain.Goal, error)

	// Get returns the latest version of a goal.
	// It returns domain.ErrGoalNotFound if the goal does not exist.
	Get(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error)

	// Create stores the first version of a goal.
	// It returns domain.ErrGoalExists if the key is already taken.
	Create(ctx context.Context, goal domain.Goal) error

	// Update appends next as a new version. next.Version must be exactly one
	// above the latest stored version, otherwise domain.ErrStaleGoalVersion is returned.
	Update(ctx context.Context, next domain.Goal) error
}
