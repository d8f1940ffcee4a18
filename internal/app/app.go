// Package app implements the application layer for goalkeeper.
package app

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/adapters/signing"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/goalkeeper/internal/engine/dispatcher"
	"go.trai.ch/goalkeeper/internal/engine/promoter"
	"go.trai.ch/zerr"
)

// Actor is recorded in the provenance of versions written on behalf of an operator.
const Actor = "cli"

// JobSweeper deletes finished isolated jobs.
type JobSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// App represents the main application logic.
type App struct {
	cfg        *domain.Config
	store      ports.GoalStore
	dispatcher *dispatcher.Dispatcher
	promoter   *promoter.Promoter
	cancels    ports.CancellationRegistry
	signer     ports.GoalSigner
	cache      ports.ArtifactCache
	sweeper    JobSweeper
	logger     ports.Logger
	clock      clockwork.Clock
	getenv     func(string) string
	version    string

	inFlight   *keySet
	teaOptions []tea.ProgramOption
}

// Deps are the collaborators of an App. Sweeper may be nil when isolation is off.
type Deps struct {
	Store         ports.GoalStore
	Dispatcher    *dispatcher.Dispatcher
	Promoter      *promoter.Promoter
	Cancellations ports.CancellationRegistry
	Signer        ports.GoalSigner
	Cache         ports.ArtifactCache
	Sweeper       JobSweeper
	Logger        ports.Logger
	Clock         clockwork.Clock
	Version       string
}

// New creates a new App instance.
func New(cfg *domain.Config, deps Deps) *App {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		cfg:        cfg,
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		promoter:   deps.Promoter,
		cancels:    deps.Cancellations,
		signer:     deps.Signer,
		cache:      deps.Cache,
		sweeper:    deps.Sweeper,
		logger:     deps.Logger,
		clock:      clock,
		getenv:     os.Getenv,
		version:    deps.Version,
		inFlight:   newKeySet(),
	}
}

// WithGetenv replaces the environment lookup used by ExecuteIsolated.
// This is primarily used for testing.
func (a *App) WithGetenv(getenv func(string) string) *App {
	a.getenv = getenv
	return a
}

// Dispatch dispatches the latest version of one goal and promotes its dependents.
func (a *App) Dispatch(ctx context.Context, goalSetID, uniqueName string) (domain.ExecutionResult, error) {
	goal, err := a.store.Get(ctx, goalSetID, uniqueName)
	if err != nil {
		return domain.ExecutionResult{}, zerr.With(zerr.Wrap(err, "failed to load goal"), "goal", goalSetID+"/"+uniqueName)
	}

	res := a.dispatchAndPromote(ctx, goal)
	if res.Failed() {
		return res, zerr.Wrap(domain.ErrDispatchFailed, res.Message)
	}
	return res, nil
}

// ExecuteIsolated is the entry point of an isolated job. The goal identity is
// taken from the environment set by the job scheduler.
func (a *App) ExecuteIsolated(ctx context.Context) (domain.ExecutionResult, error) {
	goalSetID := a.getenv(domain.EnvGoalSetID)
	uniqueName := a.getenv(domain.EnvGoalUniqueName)
	if goalSetID == "" || uniqueName == "" {
		return domain.ExecutionResult{}, domain.ErrMissingIsolatedIdentity
	}

	goal, err := a.store.Get(ctx, goalSetID, uniqueName)
	if err != nil {
		return domain.ExecutionResult{}, zerr.With(zerr.Wrap(err, "failed to load goal"), "goal", goalSetID+"/"+uniqueName)
	}

	a.logger.Info(fmt.Sprintf("Executing %s in job %s", goal.ID(), a.getenv(domain.EnvJobName)))
	res := a.dispatchAndPromote(ctx, goal, dispatcher.WithCorrelationID(a.getenv(domain.EnvCorrelationID)))
	if res.Failed() {
		return res, zerr.Wrap(domain.ErrDispatchFailed, res.Message)
	}
	return res, nil
}

func (a *App) dispatchAndPromote(ctx context.Context, goal domain.Goal, opts ...dispatcher.Option) domain.ExecutionResult {
	res := a.dispatcher.Dispatch(ctx, goal, opts...)

	promoted, err := a.promoter.Promote(ctx, goal.GoalSetID)
	if err != nil {
		a.logger.Error(err)
	}
	for _, g := range promoted {
		a.logger.Info(fmt.Sprintf("Goal %s is now %s", g.ID(), g.State))
	}
	return res
}

// List returns the latest version of every goal matching q.
func (a *App) List(ctx context.Context, q domain.GoalQuery) ([]domain.Goal, error) {
	goals, err := a.store.Query(ctx, q)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list goals")
	}
	return goals, nil
}

// Cancel marks a goal as canceled. A goal that has not finished yet also
// receives a canceled version.
func (a *App) Cancel(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error) {
	if err := a.cancels.Cancel(ctx, goalSetID, uniqueName); err != nil {
		return domain.Goal{}, zerr.Wrap(err, "failed to record cancellation")
	}

	goal, err := a.store.Get(ctx, goalSetID, uniqueName)
	if err != nil {
		return domain.Goal{}, zerr.With(zerr.Wrap(err, "failed to load goal"), "goal", goalSetID+"/"+uniqueName)
	}
	if !domain.CanTransition(goal.State, domain.StateCanceled) {
		return goal, nil
	}

	return a.write(ctx, goal, domain.GoalPatch{
		State:       domain.StateCanceled,
		Description: "Canceled",
	})
}

// Retry requests a skipped or retryable failed goal again.
func (a *App) Retry(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error) {
	goal, err := a.store.Get(ctx, goalSetID, uniqueName)
	if err != nil {
		return domain.Goal{}, zerr.With(zerr.Wrap(err, "failed to load goal"), "goal", goalSetID+"/"+uniqueName)
	}
	if !domain.CanRerequest(goal) {
		err = zerr.With(zerr.Wrap(domain.ErrNotRerequestable, "failed to retry goal"), "goal", goal.ID())
		return domain.Goal{}, zerr.With(err, "state", string(goal.State))
	}

	return a.write(ctx, goal, domain.GoalPatch{
		State:       domain.StateRequested,
		Description: "Requested again",
	})
}

// write appends a signed version of goal carrying patch.
func (a *App) write(ctx context.Context, goal domain.Goal, patch domain.GoalPatch) (domain.Goal, error) {
	patch.Provenance = domain.Provenance{
		Registration: a.cfg.Registration,
		Version:      a.version,
		Actor:        Actor,
	}
	next := goal.Next(patch, a.clock.Now())

	if a.signer != nil {
		signed, err := a.signer.Sign(next)
		if err != nil {
			return domain.Goal{}, zerr.Wrap(err, "failed to sign goal")
		}
		next = signed
	}

	if err := a.store.Update(ctx, next); err != nil {
		return domain.Goal{}, zerr.With(zerr.Wrap(err, "failed to update goal"), "goal", goal.ID())
	}
	return next, nil
}

// Sweep deletes completed isolated jobs once.
func (a *App) Sweep(ctx context.Context) (int, error) {
	if a.sweeper == nil {
		return 0, domain.ErrIsolationDisabled
	}
	return a.sweeper.Sweep(ctx)
}

// GenerateKeys writes a new signing key pair into dir and returns both paths.
func (a *App) GenerateKeys(dir string, bits int) (string, string, error) {
	key, err := signing.GenerateKey(bits)
	if err != nil {
		return "", "", err
	}
	privPath, pubPath, err := signing.SaveKeyPair(dir, key)
	if err != nil {
		return "", "", err
	}
	a.logger.Info(fmt.Sprintf("Generated key %s", signing.KeyID(&key.PublicKey)))
	return privPath, pubPath, nil
}

// RemoveCache deletes one archive from the artifact cache.
func (a *App) RemoveCache(ctx context.Context, key domain.CacheKey) error {
	if err := a.cache.Remove(ctx, key); err != nil {
		return zerr.Wrap(err, "failed to remove cache entry")
	}
	a.logger.Info(fmt.Sprintf("Removed cache entry '%s' for %s@%s", key.Classifier, key.Repo.Slug(), key.SHA))
	return nil
}
