package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// GoalState is the lifecycle state of a goal.
type GoalState string

const (
	// StatePlanned marks a goal whose preconditions have not been evaluated yet.
	StatePlanned GoalState = "planned"
	// StateRequested marks a goal that is ready to be dispatched.
	StateRequested GoalState = "requested"
	// StateInProcess marks a goal that is executing, locally or in an isolated job.
	StateInProcess GoalState = "in_process"
	// StateSuccess marks a goal that completed successfully.
	StateSuccess GoalState = "success"
	// StateFailure marks a goal that completed unsuccessfully.
	StateFailure GoalState = "failure"
	// StateSkipped marks a goal that was not executed.
	StateSkipped GoalState = "skipped"
	// StateStopped marks a goal whose execution was halted deliberately.
	StateStopped GoalState = "stopped"
	// StateCanceled marks a goal that was canceled before it ran.
	StateCanceled GoalState = "canceled"
	// StateWaitingForApproval marks a goal that executed and awaits approval.
	StateWaitingForApproval GoalState = "waiting_for_approval"
	// StateWaitingForPreApproval marks a goal that awaits approval before it may run.
	StateWaitingForPreApproval GoalState = "waiting_for_pre_approval"
	// StateApproved marks a goal whose post-execution approval was granted.
	StateApproved GoalState = "approved"
	// StatePreApproved marks a goal whose pre-execution approval was granted.
	StatePreApproved GoalState = "pre_approved"
)

// AllStates lists every goal state in lifecycle order.
var AllStates = []GoalState{
	StatePlanned,
	StateRequested,
	StateInProcess,
	StateSuccess,
	StateFailure,
	StateSkipped,
	StateStopped,
	StateCanceled,
	StateWaitingForApproval,
	StateWaitingForPreApproval,
	StateApproved,
	StatePreApproved,
}

var transitions = map[GoalState][]GoalState{
	StatePlanned: {
		StateRequested, StateWaitingForPreApproval, StateSkipped,
		StateStopped, StateCanceled, StateFailure,
	},
	StateWaitingForPreApproval: {
		StatePreApproved, StateSkipped, StateStopped, StateCanceled, StateFailure,
	},
	StateRequested: {
		StateInProcess, StateSuccess, StateFailure, StateSkipped,
		StateStopped, StateCanceled, StateWaitingForApproval,
	},
	StatePreApproved: {
		StateInProcess, StateSuccess, StateFailure, StateSkipped,
		StateStopped, StateCanceled, StateWaitingForApproval,
	},
	StateInProcess: {
		StateSuccess, StateFailure, StateSkipped, StateStopped,
		StateCanceled, StateWaitingForApproval,
	},
	StateWaitingForApproval: {
		StateApproved, StateFailure, StateSkipped, StateStopped, StateCanceled,
	},
	StateApproved: {
		StateInProcess, StateSuccess, StateFailure, StateSkipped,
		StateStopped, StateCanceled,
	},
}

// IsValid reports whether s is a known state.
func (s GoalState) IsValid() bool {
	return slices.Contains(AllStates, s)
}

// IsTerminal reports whether no further transition may leave s.
func (s GoalState) IsTerminal() bool {
	switch s {
	case StateSuccess, StateFailure, StateSkipped, StateStopped, StateCanceled:
		return true
	default:
		return false
	}
}

// IsRequestedLike reports whether a goal in state s is eligible for dispatch.
func (s GoalState) IsRequestedLike() bool {
	return s == StateRequested || s == StateApproved || s == StatePreApproved
}

// IsWaiting reports whether s is one of the approval waiting states.
func (s GoalState) IsWaiting() bool {
	return s == StateWaitingForApproval || s == StateWaitingForPreApproval
}

// CanTransition reports whether the state machine allows moving from one state to another.
func CanTransition(from, to GoalState) bool {
	if from.IsTerminal() {
		return false
	}
	return slices.Contains(transitions[from], to)
}

// CheckTransition returns ErrInvalidTransition when from -> to is not allowed.
func CheckTransition(from, to GoalState) error {
	if CanTransition(from, to) {
		return nil
	}
	return zerr.With(zerr.With(ErrInvalidTransition, "from", string(from)), "to", string(to))
}

// CanRerequest reports whether a terminal goal may be explicitly requested again.
// Only skipped goals and failed goals that allow a retry qualify.
func CanRerequest(g Goal) bool {
	switch g.State {
	case StateSkipped:
		return true
	case StateFailure:
		return g.RetryFeasible
	default:
		return false
	}
}
