package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func TestGoalState_IsTerminal(t *testing.T) {
	terminal := map[domain.GoalState]bool{
		domain.StateSuccess:  true,
		domain.StateFailure:  true,
		domain.StateSkipped:  true,
		domain.StateStopped:  true,
		domain.StateCanceled: true,
	}

	for _, s := range domain.AllStates {
		assert.Equal(t, terminal[s], s.IsTerminal(), string(s))
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range domain.AllStates {
		if !from.IsTerminal() {
			continue
		}
		for _, to := range domain.AllStates {
			assert.False(t, domain.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.GoalState
		want     bool
	}{
		{domain.StatePlanned, domain.StateRequested, true},
		{domain.StatePlanned, domain.StateWaitingForPreApproval, true},
		{domain.StatePlanned, domain.StateInProcess, false},
		{domain.StateRequested, domain.StateInProcess, true},
		{domain.StateRequested, domain.StateSuccess, true},
		{domain.StateRequested, domain.StatePlanned, false},
		{domain.StateInProcess, domain.StateSuccess, true},
		{domain.StateInProcess, domain.StateRequested, false},
		{domain.StateWaitingForApproval, domain.StateApproved, true},
		{domain.StateWaitingForPreApproval, domain.StatePreApproved, true},
		{domain.StatePreApproved, domain.StateInProcess, true},
		{domain.StateApproved, domain.StateSuccess, true},
		{domain.StateApproved, domain.StateWaitingForApproval, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckTransition(t *testing.T) {
	require.NoError(t, domain.CheckTransition(domain.StateRequested, domain.StateFailure))

	err := domain.CheckTransition(domain.StateSuccess, domain.StateRequested)
	require.ErrorContains(t, err, domain.ErrInvalidTransition.Error())
}

func TestGoalState_IsRequestedLike(t *testing.T) {
	assert.True(t, domain.StateRequested.IsRequestedLike())
	assert.True(t, domain.StateApproved.IsRequestedLike())
	assert.True(t, domain.StatePreApproved.IsRequestedLike())
	assert.False(t, domain.StatePlanned.IsRequestedLike())
	assert.False(t, domain.StateInProcess.IsRequestedLike())
}

func TestCanRerequest(t *testing.T) {
	tests := []struct {
		name string
		goal domain.Goal
		want bool
	}{
		{"skipped", domain.Goal{State: domain.StateSkipped}, true},
		{"retryable failure", domain.Goal{State: domain.StateFailure, RetryFeasible: true}, true},
		{"final failure", domain.Goal{State: domain.StateFailure}, false},
		{"success", domain.Goal{State: domain.StateSuccess}, false},
		{"canceled", domain.Goal{State: domain.StateCanceled}, false},
		{"in process", domain.Goal{State: domain.StateInProcess}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanRerequest(tt.goal))
		})
	}
}
