package domain

// DependencyPolicy decides whether the state of a precondition goal blocks its dependents.
type DependencyPolicy struct {
	// SkippedBlocks makes a skipped precondition block its dependents.
	SkippedBlocks bool
}

// DefaultDependencyPolicy treats skipped preconditions as satisfied.
func DefaultDependencyPolicy() DependencyPolicy {
	return DependencyPolicy{}
}

// Blocks reports whether dep prevents a dependent goal from being requested.
func (p DependencyPolicy) Blocks(dep Goal) bool {
	switch dep.State {
	case StateSuccess:
		return false
	case StateSkipped:
		return p.SkippedBlocks
	case StateFailure:
		return !dep.RetryFeasible
	case StateStopped, StateWaitingForApproval, StateWaitingForPreApproval:
		return false
	default:
		// planned, requested, in_process, approved, pre_approved and canceled
		return true
	}
}

// GoalLookup resolves a precondition key to the latest version of that goal.
type GoalLookup func(key GoalKey) (Goal, bool)

// PreconditionsSatisfied reports whether none of g's preconditions block it.
// A precondition that cannot be found blocks.
func PreconditionsSatisfied(g Goal, lookup GoalLookup, policy DependencyPolicy) bool {
	return len(BlockingPreconditions(g, lookup, policy)) == 0
}

// BlockingPreconditions returns the precondition keys that currently block g, in declaration order.
func BlockingPreconditions(g Goal, lookup GoalLookup, policy DependencyPolicy) []GoalKey {
	var blocking []GoalKey
	for _, pre := range g.PreConditions {
		key := pre
		if key.GoalSetID == "" {
			key.GoalSetID = g.GoalSetID
		}
		dep, ok := lookup(key)
		if !ok || policy.Blocks(dep) {
			blocking = append(blocking, key)
		}
	}
	return blocking
}
