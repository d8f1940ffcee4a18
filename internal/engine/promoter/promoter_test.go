package promoter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/goalstore"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports/mocks"
	"go.trai.ch/goalkeeper/internal/engine/promoter"
	"go.uber.org/mock/gomock"
)

const registration = "web-executor"

func goal(name string, state domain.GoalState, pre ...string) domain.Goal {
	g := domain.Goal{
		GoalSetID:    "gs-1",
		UniqueName:   name,
		Name:         name,
		Version:      1,
		State:        state,
		Registration: registration,
		Fulfillment:  domain.Fulfillment{Method: domain.MethodManaged, Name: name},
	}
	for _, p := range pre {
		g.PreConditions = append(g.PreConditions, domain.GoalKey{UniqueName: p})
	}
	return g
}

func newPromoter(t *testing.T, store *goalstore.MemoryStore, cfg *domain.Config) *promoter.Promoter {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	return promoter.New(cfg, store, nil, logger, clock, "1.0.0")
}

func seed(t *testing.T, store *goalstore.MemoryStore, goals ...domain.Goal) {
	t.Helper()
	for _, g := range goals {
		require.NoError(t, store.Create(context.Background(), g))
	}
}

func state(t *testing.T, store *goalstore.MemoryStore, name string) domain.GoalState {
	t.Helper()
	g, err := store.Get(context.Background(), "gs-1", name)
	require.NoError(t, err)
	return g.State
}

func TestPromote_RequestsUnblockedGoals(t *testing.T) {
	store := goalstore.NewMemoryStore()
	seed(t, store,
		goal("build", domain.StateSuccess),
		goal("test", domain.StatePlanned, "build"),
		goal("deploy", domain.StatePlanned, "test"),
	)

	promoted, err := newPromoter(t, store, &domain.Config{Registration: registration}).
		Promote(context.Background(), "gs-1")
	require.NoError(t, err)

	require.Len(t, promoted, 1)
	assert.Equal(t, "test", promoted[0].UniqueName)
	assert.Equal(t, domain.StateRequested, state(t, store, "test"))
	assert.Equal(t, domain.StatePlanned, state(t, store, "deploy"))
	assert.Equal(t, promoter.Actor, promoted[0].Provenance[0].Actor)
}

func TestPromote_FinalFailureBlocks(t *testing.T) {
	store := goalstore.NewMemoryStore()
	seed(t, store,
		goal("build", domain.StateFailure),
		goal("test", domain.StatePlanned, "build"),
	)

	promoted, err := newPromoter(t, store, &domain.Config{Registration: registration}).
		Promote(context.Background(), "gs-1")
	require.NoError(t, err)

	assert.Empty(t, promoted)
	assert.Equal(t, domain.StatePlanned, state(t, store, "test"))
}

func TestPromote_SkippedPolicy(t *testing.T) {
	store := goalstore.NewMemoryStore()
	seed(t, store,
		goal("lint", domain.StateSkipped),
		goal("test", domain.StatePlanned, "lint"),
	)
	cfg := &domain.Config{Registration: registration, Policy: domain.PolicyConfig{SkippedBlocks: true}}

	promoted, err := newPromoter(t, store, cfg).Promote(context.Background(), "gs-1")
	require.NoError(t, err)
	assert.Empty(t, promoted)
}

func TestPromote_PreApprovalRequired(t *testing.T) {
	store := goalstore.NewMemoryStore()
	deploy := goal("deploy", domain.StatePlanned)
	deploy.PreApprovalRequired = true
	seed(t, store, deploy)

	_, err := newPromoter(t, store, &domain.Config{Registration: registration}).
		Promote(context.Background(), "gs-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StateWaitingForPreApproval, state(t, store, "deploy"))
}

func TestPromote_IgnoresOtherRegistrations(t *testing.T) {
	store := goalstore.NewMemoryStore()
	foreign := goal("deploy", domain.StatePlanned)
	foreign.Registration = "other-executor"
	seed(t, store, foreign)

	promoted, err := newPromoter(t, store, &domain.Config{Registration: registration}).
		Promote(context.Background(), "gs-1")
	require.NoError(t, err)
	assert.Empty(t, promoted)
}

func TestPromote_SignsAndReportsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := goalstore.NewMemoryStore()
	seed(t, store, goal("test", domain.StatePlanned))

	signer := mocks.NewMockGoalSigner(ctrl)
	signer.EXPECT().Sign(gomock.Any()).Return(domain.Goal{}, errors.New("hsm offline"))
	logger := mocks.NewMockLogger(ctrl)

	p := promoter.New(&domain.Config{Registration: registration}, store, signer, logger, clockwork.NewFakeClock(), "1.0.0")
	promoted, err := p.Promote(context.Background(), "gs-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hsm offline")
	assert.Empty(t, promoted)
	assert.Equal(t, domain.StatePlanned, state(t, store, "test"))
}
