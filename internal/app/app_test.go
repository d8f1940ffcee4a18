package app_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/cancel"
	"go.trai.ch/goalkeeper/internal/adapters/goalstore"
	"go.trai.ch/goalkeeper/internal/adapters/signing"
	"go.trai.ch/goalkeeper/internal/app"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/goalkeeper/internal/core/ports/mocks"
	"go.trai.ch/goalkeeper/internal/engine/dispatcher"
	"go.trai.ch/goalkeeper/internal/engine/promoter"
	"go.uber.org/mock/gomock"
)

const registration = "web-executor"

type appTestMocks struct {
	store    *goalstore.MemoryStore
	executor *mocks.MockExecutor
	cache    *mocks.MockArtifactCache
	cancels  *cancel.MemoryRegistry
	clock    clockwork.Clock
}

type fakeSweeper struct {
	deleted int
	err     error
}

func (s *fakeSweeper) Sweep(context.Context) (int, error) {
	return s.deleted, s.err
}

func testConfig() *domain.Config {
	return &domain.Config{
		Registration: registration,
		Workdir:      "/work",
		Serve:        domain.ServeConfig{PollInterval: time.Second, Concurrency: 2},
		Implementations: []domain.Implementation{
			{Name: "build", Command: []string{"make", "build"}},
			{Name: "deploy", Command: []string{"make", "deploy"}},
		},
	}
}

func setupAppTest(t *testing.T, clock clockwork.Clock, sweeper app.JobSweeper) (*app.App, appTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	cfg := testConfig()
	m := appTestMocks{
		store:    goalstore.NewMemoryStore(),
		executor: mocks.NewMockExecutor(ctrl),
		cache:    mocks.NewMockArtifactCache(ctrl),
		cancels:  cancel.NewMemoryRegistry(),
		clock:    clock,
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	d := dispatcher.New(cfg, dispatcher.Deps{
		Store:         m.store,
		Executor:      m.executor,
		Cancellations: m.cancels,
		Tracer:        tracer,
		Logger:        logger,
		Clock:         clock,
		Version:       "1.0.0",
	})
	p := promoter.New(cfg, m.store, nil, logger, clock, "1.0.0")

	a := app.New(cfg, app.Deps{
		Store:         m.store,
		Dispatcher:    d,
		Promoter:      p,
		Cancellations: m.cancels,
		Cache:         m.cache,
		Sweeper:       sweeper,
		Logger:        logger,
		Clock:         clock,
		Version:       "1.0.0",
	})
	return a, m
}

func fakeClock() clockwork.Clock {
	return clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
}

func goal(name string, state domain.GoalState, pre ...string) domain.Goal {
	g := domain.Goal{
		GoalSetID:    "gs-1",
		UniqueName:   name,
		Name:         name,
		Version:      1,
		State:        state,
		Registration: registration,
		Fulfillment:  domain.Fulfillment{Method: domain.MethodManaged, Name: name},
		Repo:         domain.Repo{Owner: "acme", Name: "web"},
		SHA:          "abc123",
	}
	for _, p := range pre {
		g.PreConditions = append(g.PreConditions, domain.GoalKey{UniqueName: p})
	}
	return g
}

func seed(t *testing.T, store *goalstore.MemoryStore, goals ...domain.Goal) {
	t.Helper()
	for _, g := range goals {
		require.NoError(t, store.Create(context.Background(), g))
	}
}

func latest(t *testing.T, store *goalstore.MemoryStore, setID, name string) domain.Goal {
	t.Helper()
	g, err := store.Get(context.Background(), setID, name)
	require.NoError(t, err)
	return g
}

func TestApp_Dispatch_PromotesDependents(t *testing.T) {
	a, m := setupAppTest(t, fakeClock(), nil)
	seed(t, m.store,
		goal("build", domain.StateRequested),
		goal("deploy", domain.StatePlanned, "build"),
	)
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := a.Dispatch(context.Background(), "gs-1", "build")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Code)
	assert.Equal(t, domain.StateSuccess, latest(t, m.store, "gs-1", "build").State)
	assert.Equal(t, domain.StateRequested, latest(t, m.store, "gs-1", "deploy").State)
}

func TestApp_Dispatch_Failure(t *testing.T) {
	a, m := setupAppTest(t, fakeClock(), nil)
	seed(t, m.store, goal("build", domain.StateRequested))
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 2"))

	res, err := a.Dispatch(context.Background(), "gs-1", "build")

	require.ErrorIs(t, err, domain.ErrDispatchFailed)
	assert.True(t, res.Failed())
	assert.Equal(t, domain.StateFailure, latest(t, m.store, "gs-1", "build").State)
}

func TestApp_Dispatch_UnknownGoal(t *testing.T) {
	a, _ := setupAppTest(t, fakeClock(), nil)

	_, err := a.Dispatch(context.Background(), "gs-1", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "goal not found")
}

func TestApp_ExecuteIsolated(t *testing.T) {
	t.Run("uses identity from environment", func(t *testing.T) {
		a, m := setupAppTest(t, fakeClock(), nil)
		seed(t, m.store, goal("build", domain.StateRequested))
		env := map[string]string{
			domain.EnvGoalSetID:      "gs-1",
			domain.EnvGoalUniqueName: "build",
			domain.EnvCorrelationID:  "corr-42",
		}
		a.WithGetenv(func(k string) string { return env[k] })

		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
				assert.Equal(t, "corr-42", cmd.Environment[domain.EnvCorrelationID])
				return nil
			})

		_, err := a.ExecuteIsolated(context.Background())
		require.NoError(t, err)

		g := latest(t, m.store, "gs-1", "build")
		assert.Equal(t, domain.StateSuccess, g.State)
		assert.Equal(t, "corr-42", g.Provenance[len(g.Provenance)-1].CorrelationID)
	})

	t.Run("missing identity", func(t *testing.T) {
		a, _ := setupAppTest(t, fakeClock(), nil)
		a.WithGetenv(func(string) string { return "" })

		_, err := a.ExecuteIsolated(context.Background())
		require.ErrorIs(t, err, domain.ErrMissingIsolatedIdentity)
	})
}

func TestApp_Cancel(t *testing.T) {
	a, m := setupAppTest(t, fakeClock(), nil)
	seed(t, m.store, goal("deploy", domain.StatePlanned), goal("build", domain.StateSuccess))

	canceled, err := a.Cancel(context.Background(), "gs-1", "deploy")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCanceled, canceled.State)
	assert.Equal(t, app.Actor, canceled.Provenance[len(canceled.Provenance)-1].Actor)

	marked, err := m.cancels.IsCanceled(context.Background(), "gs-1", "deploy")
	require.NoError(t, err)
	assert.True(t, marked)

	// A finished goal keeps its state but is still marked.
	done, err := a.Cancel(context.Background(), "gs-1", "build")
	require.NoError(t, err)
	assert.Equal(t, domain.StateSuccess, done.State)
	assert.Equal(t, int64(1), done.Version)
}

func TestApp_Retry(t *testing.T) {
	retryable := goal("flaky", domain.StateFailure)
	retryable.RetryFeasible = true

	a, m := setupAppTest(t, fakeClock(), nil)
	seed(t, m.store, retryable, goal("broken", domain.StateFailure), goal("lint", domain.StateSkipped))

	for _, name := range []string{"flaky", "lint"} {
		g, err := a.Retry(context.Background(), "gs-1", name)
		require.NoError(t, err)
		assert.Equal(t, domain.StateRequested, g.State)
		assert.Equal(t, int64(2), g.Version)
	}

	_, err := a.Retry(context.Background(), "gs-1", "broken")
	require.ErrorIs(t, err, domain.ErrNotRerequestable)
	assert.Equal(t, domain.StateFailure, latest(t, m.store, "gs-1", "broken").State)
}

func TestApp_Submit(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "goals.yaml",
			content: `goalSetId: gs-9
repo:
  owner: acme
  name: web
sha: abc123
branch: main
goals:
  - uniqueName: build
    fulfillment:
      name: build
  - uniqueName: deploy
    preConditions:
      - uniqueName: build
    fulfillment:
      name: deploy
`,
		},
		{
			name: "toml",
			file: "goals.toml",
			content: `goalSetId = "gs-9"
sha = "abc123"
branch = "main"

[repo]
owner = "acme"
name = "web"

[[goals]]
uniqueName = "build"
[goals.fulfillment]
name = "build"

[[goals]]
uniqueName = "deploy"
[goals.fulfillment]
name = "deploy"
[[goals.preConditions]]
uniqueName = "build"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := setupAppTest(t, fakeClock(), nil)
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			set, err := a.Submit(context.Background(), path)
			require.NoError(t, err)

			require.Len(t, set.Goals, 2)
			assert.Equal(t, "gs-9", set.ID)

			build := latest(t, m.store, "gs-9", "build")
			assert.Equal(t, domain.StateRequested, build.State)
			assert.Equal(t, registration, build.Registration)
			assert.Equal(t, domain.MethodManaged, build.Fulfillment.Method)
			assert.Equal(t, "acme/web", build.Repo.Slug())
			assert.Equal(t, "main", build.Branch)

			deploy := latest(t, m.store, "gs-9", "deploy")
			assert.Equal(t, domain.StatePlanned, deploy.State)
			assert.Equal(t, int64(1), deploy.Version)
		})
	}
}

func TestApp_Submit_Errors(t *testing.T) {
	a, _ := setupAppTest(t, fakeClock(), nil)

	_, err := a.SubmitDocument(context.Background(), domain.GoalSetDocument{GoalSetID: "gs-1"})
	require.ErrorIs(t, err, domain.ErrEmptyGoalSet)

	_, err = a.Submit(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read file")
}

func TestApp_Submit_GeneratesGoalSetID(t *testing.T) {
	a, _ := setupAppTest(t, fakeClock(), nil)

	set, err := a.SubmitDocument(context.Background(), domain.GoalSetDocument{
		Goals: []domain.Goal{{UniqueName: "build", Fulfillment: domain.Fulfillment{Name: "build"}}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, set.ID)
	require.Len(t, set.Goals, 1)
	assert.Equal(t, set.ID, set.Goals[0].GoalSetID)
}

func TestApp_Sweep(t *testing.T) {
	a, _ := setupAppTest(t, fakeClock(), &fakeSweeper{deleted: 3})
	n, err := a.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	disabled, _ := setupAppTest(t, fakeClock(), nil)
	_, err = disabled.Sweep(context.Background())
	require.ErrorIs(t, err, domain.ErrIsolationDisabled)
}

func TestApp_GenerateKeys(t *testing.T) {
	a, _ := setupAppTest(t, fakeClock(), nil)
	dir := t.TempDir()

	privPath, pubPath, err := a.GenerateKeys(dir, 2048)
	require.NoError(t, err)

	key, err := signing.LoadPrivateKey(privPath)
	require.NoError(t, err)
	trusted, err := signing.LoadPublicKeys([]string{pubPath})
	require.NoError(t, err)

	keyring := signing.NewKeyring(key, trusted...)
	signed, err := keyring.Sign(goal("build", domain.StateRequested))
	require.NoError(t, err)
	keyID, err := keyring.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, signing.KeyID(&key.PublicKey), keyID)
}

func TestApp_RemoveCache(t *testing.T) {
	a, m := setupAppTest(t, fakeClock(), nil)
	key := domain.CacheKey{Repo: domain.Repo{Owner: "acme", Name: "web"}, SHA: "abc123", Classifier: "node_modules"}

	m.cache.EXPECT().Remove(gomock.Any(), key).Return(nil)
	require.NoError(t, a.RemoveCache(context.Background(), key))

	m.cache.EXPECT().Remove(gomock.Any(), key).Return(errors.New("permission denied"))
	require.ErrorContains(t, a.RemoveCache(context.Background(), key), "permission denied")
}

func TestApp_Serve(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		a, m := setupAppTest(t, clockwork.NewRealClock(), nil)
		seed(t, m.store,
			goal("build", domain.StateRequested),
			goal("deploy", domain.StatePlanned, "build"),
		)

		var runs atomic.Int32
		m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, domain.Command, io.Writer, io.Writer) error {
				runs.Add(1)
				return nil
			}).Times(2)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- a.Serve(ctx) }()

		// First poll dispatches build and promotes deploy.
		synctest.Wait()
		assert.Equal(t, int32(1), runs.Load())
		assert.Equal(t, domain.StateRequested, latest(t, m.store, "gs-1", "deploy").State)

		// The next tick picks up the promoted goal.
		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, int32(2), runs.Load())
		assert.Equal(t, domain.StateSuccess, latest(t, m.store, "gs-1", "deploy").State)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Serve_SkipsOtherRegistrations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		a, m := setupAppTest(t, clockwork.NewRealClock(), nil)
		foreign := goal("build", domain.StateRequested)
		foreign.Registration = "other-executor"
		seed(t, m.store, foreign)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- a.Serve(ctx) }()

		synctest.Wait()
		cancel()
		require.NoError(t, <-done)

		assert.Equal(t, domain.StateRequested, latest(t, m.store, "gs-1", "build").State)
	})
}

func TestApp_Watch(t *testing.T) {
	a, m := setupAppTest(t, fakeClock(), nil)
	seed(t, m.store, goal("build", domain.StateSuccess), goal("deploy", domain.StateSkipped))

	a.WithTeaOptions(
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)

	require.NoError(t, a.Watch(context.Background(), "gs-1"))
}
