package ports

import (
	"context"

	"go.trai.ch/goalkeeper/internal/core/domain"
)

// GoalScheduler hands a goal to an execution environment outside this process.
// Schedulers are consulted in order; the first that supports an invocation wins.
//
//go:generate mockgen -source=scheduler.go -destination=mocks/mock_scheduler.go -package=mocks
type GoalScheduler interface {
	// Supports reports whether this scheduler takes the invocation.
	Supports(inv *domain.Invocation) bool

	// Schedule starts execution elsewhere. A nil error with a zero code
	// means the goal is now in process.
	Schedule(ctx context.Context, inv *domain.Invocation) (domain.ExecutionResult, error)
}
