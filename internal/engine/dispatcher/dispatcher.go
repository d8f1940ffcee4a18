// Package dispatcher implements the fulfillment dispatcher that turns a
// requested goal into exactly one new goal version.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Actor is recorded in the provenance of every version the dispatcher writes.
const Actor = "dispatcher"

// Deps are the collaborators of a Dispatcher. Cache, Signer and Verifier may be nil.
type Deps struct {
	Store         ports.GoalStore
	Schedulers    []ports.GoalScheduler
	Executor      ports.Executor
	Cache         ports.ArtifactCache
	Logs          ports.ProgressLogFactory
	Signer        ports.GoalSigner
	Verifier      ports.GoalVerifier
	Cancellations ports.CancellationRegistry
	Tracer        ports.Tracer
	Logger        ports.Logger
	Clock         clockwork.Clock
	// Version identifies this executor build in provenance records.
	Version string
}

// Dispatcher routes goals to a scheduler or a local implementation and
// records the outcome.
type Dispatcher struct {
	cfg *domain.Config
	Deps
}

// New creates a Dispatcher.
func New(cfg *domain.Config, deps Deps) *Dispatcher {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Dispatcher{cfg: cfg, Deps: deps}
}

type dispatchOptions struct {
	correlationID string
	credentials   map[string]string
}

// Option configures a single dispatch.
type Option func(*dispatchOptions)

// WithCorrelationID ties the dispatch to an existing correlation id.
func WithCorrelationID(id string) Option {
	return func(o *dispatchOptions) {
		if id != "" {
			o.correlationID = id
		}
	}
}

// WithCredentials passes credentials to the executed implementation as environment variables.
func WithCredentials(creds map[string]string) Option {
	return func(o *dispatchOptions) {
		o.credentials = maps.Clone(creds)
	}
}

// Dispatch runs goal through the fulfillment pipeline. Any failure is
// reported through the result; at most one goal version is written.
func (d *Dispatcher) Dispatch(ctx context.Context, goal domain.Goal, opts ...Option) (res domain.ExecutionResult) {
	o := dispatchOptions{correlationID: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := d.Tracer.Start(ctx, "dispatch "+goal.UniqueName, ports.WithAttributes(map[string]any{
		"goalkeeper.goal_set_id":    goal.GoalSetID,
		"goalkeeper.unique_name":    goal.UniqueName,
		"goalkeeper.version":        goal.Version,
		"goalkeeper.correlation_id": o.correlationID,
	}))
	defer span.End()
	defer func() {
		span.SetAttribute("goalkeeper.code", res.Code)
	}()

	if goal.Registration != d.cfg.Registration {
		return domain.Success("goal belongs to registration " + goal.Registration)
	}

	if d.verificationRequired() {
		if err := d.verify(goal); err != nil {
			span.RecordError(err)
			d.Logger.Error(err)
			return domain.Failure(err.Error())
		}
	}

	skip, reason, err := d.preflight(ctx, goal)
	if err != nil {
		span.RecordError(err)
		d.Logger.Error(err)
		return domain.Failure(err.Error())
	}
	if skip {
		return domain.Success(reason)
	}

	if !d.dispatchable(goal.State) {
		return domain.Success(fmt.Sprintf("goal %s is %s", goal.ID(), goal.State))
	}

	switch goal.Fulfillment.Method {
	case domain.MethodSideEffect:
		return domain.Success("side-effect goal " + goal.ID() + " is fulfilled elsewhere")
	case domain.MethodManaged:
	default:
		return d.fail(ctx, goal, o.correlationID, domain.NoFulfillmentDescription(goal.UniqueName))
	}

	impl, ok := d.cfg.Implementation(goal.Fulfillment.Name)
	if !ok {
		span.RecordError(zerr.With(domain.ErrImplementationNotFound, "name", goal.Fulfillment.Name))
		return d.fail(ctx, goal, o.correlationID, domain.NoFulfillmentDescription(goal.UniqueName))
	}

	inv := &domain.Invocation{
		Goal:           goal,
		Implementation: impl,
		CorrelationID:  o.correlationID,
		Workdir:        d.cfg.Workdir,
		Credentials:    o.credentials,
	}
	out, err := d.execute(ctx, inv, d.selectScheduler(inv))
	if err != nil {
		span.RecordError(err)
	}
	return d.commit(ctx, goal, o.correlationID, out.patch, out.result)
}

// outcome is the mapped result of one execution.
type outcome struct {
	patch  domain.GoalPatch
	result domain.ExecutionResult
}

// execute brackets the run with a progress log and maps its result. It recovers panics.
func (d *Dispatcher) execute(ctx context.Context, inv *domain.Invocation, scheduler ports.GoalScheduler) (out outcome, err error) {
	progress := d.openLog(ctx, inv)
	inv.Progress = progress
	start := d.Clock.Now()
	d.writeHeader(progress, inv)

	defer func() {
		if r := recover(); r != nil {
			err = zerr.With(domain.ErrExecutionPanicked, "panic", fmt.Sprint(r))
			out = failureOutcome(domain.FailedDescription(goalName(inv.Goal)), err)
		}
		if err != nil {
			d.Logger.Error(zerr.With(err, "goal", inv.Goal.ID()))
		}
		d.writeFooter(progress, out.result, d.Clock.Since(start))
		if cerr := progress.Close(context.WithoutCancel(ctx)); cerr != nil {
			d.Logger.Error(cerr)
		}
	}()

	if scheduler != nil {
		res, serr := scheduler.Schedule(ctx, inv)
		if serr != nil || res.Failed() {
			if serr == nil {
				serr = zerr.With(domain.ErrScheduleRejected, "message", res.Message)
			}
			return failureOutcome(domain.ScheduleFailedDescription, serr), serr
		}
		state := res.State
		if state == "" {
			state = domain.StateInProcess
		}
		desc := res.Description
		if desc == "" {
			desc = domain.ScheduledDescription(goalName(inv.Goal))
		}
		return outcome{
			patch: domain.GoalPatch{
				State:        state,
				Description:  desc,
				Phase:        res.Phase,
				URL:          res.URL,
				ExternalURLs: res.ExternalURLs,
			},
			result: res,
		}, nil
	}

	if err := d.executeLocal(ctx, inv); err != nil {
		return failureOutcome(domain.FailedDescription(goalName(inv.Goal)), err), err
	}
	return successOutcome(inv.Goal), nil
}

func (d *Dispatcher) executeLocal(ctx context.Context, inv *domain.Invocation) error {
	impl := inv.Implementation
	if len(impl.Command) == 0 {
		return zerr.With(domain.ErrEmptyCommand, "implementation", impl.Name)
	}

	if err := d.restoreCache(ctx, inv); err != nil {
		return err
	}

	cmd := domain.Command{
		Name:        impl.Command[0],
		Args:        impl.Command[1:],
		Dir:         inv.Workdir,
		Environment: commandEnvironment(inv),
	}
	if err := d.Executor.Execute(ctx, cmd, inv.Progress, inv.Progress); err != nil {
		return err
	}

	d.captureCache(ctx, inv)
	return nil
}

func failureOutcome(desc string, err error) outcome {
	return outcome{
		patch:  domain.GoalPatch{State: domain.StateFailure, Description: desc},
		result: domain.Failure(err.Error()),
	}
}

func successOutcome(goal domain.Goal) outcome {
	state := domain.StateSuccess
	if goal.ApprovalRequired && goal.State != domain.StateApproved {
		state = domain.StateWaitingForApproval
	}
	return outcome{
		patch:  domain.GoalPatch{State: state, Description: domain.CompletedDescription(goalName(goal))},
		result: domain.Success(domain.CompletedDescription(goalName(goal))),
	}
}

// fail records a configuration failure without executing anything.
func (d *Dispatcher) fail(ctx context.Context, goal domain.Goal, correlationID, desc string) domain.ExecutionResult {
	return d.commit(ctx, goal, correlationID,
		domain.GoalPatch{State: domain.StateFailure, Description: desc},
		domain.Failure(desc),
	)
}

// commit writes the single new goal version of this dispatch.
func (d *Dispatcher) commit(
	ctx context.Context,
	goal domain.Goal,
	correlationID string,
	patch domain.GoalPatch,
	res domain.ExecutionResult,
) domain.ExecutionResult {
	if err := domain.CheckTransition(goal.State, patch.State); err != nil {
		err = zerr.With(err, "goal", goal.ID())
		d.Logger.Error(err)
		return domain.Failure(err.Error())
	}

	patch.Provenance = domain.Provenance{
		Registration:  d.cfg.Registration,
		Version:       d.Version,
		CorrelationID: correlationID,
		Actor:         Actor,
	}
	next := goal.Next(patch, d.Clock.Now())

	if d.Signer != nil {
		signed, err := d.Signer.Sign(next)
		if err != nil {
			err = zerr.With(zerr.Wrap(err, "failed to sign goal"), "goal", goal.ID())
			d.Logger.Error(err)
			return domain.Failure(err.Error())
		}
		next = signed
	}

	if err := d.Store.Update(ctx, next); err != nil {
		if errors.Is(err, domain.ErrStaleGoalVersion) {
			d.Logger.Warn(fmt.Sprintf("Goal %s changed while dispatching, dropping version %d", goal.ID(), next.Version))
		} else {
			d.Logger.Error(zerr.With(zerr.With(err, "goal", goal.ID()), "version", next.Version))
		}
		return domain.Failure(err.Error())
	}
	return res
}

func (d *Dispatcher) verificationRequired() bool {
	return d.cfg.Signing.Verify || d.cfg.Isolation.Isolated
}

func (d *Dispatcher) verify(goal domain.Goal) error {
	if d.Verifier == nil {
		return zerr.With(domain.ErrNoTrustedKeys, "goal", goal.ID())
	}
	if _, err := d.Verifier.Verify(goal); err != nil {
		return zerr.With(zerr.Wrap(err, "refusing to dispatch goal"), "goal", goal.ID())
	}
	return nil
}

// preflight reports whether the goal was canceled or superseded since it was read.
func (d *Dispatcher) preflight(ctx context.Context, goal domain.Goal) (bool, string, error) {
	if d.Cancellations != nil {
		canceled, err := d.Cancellations.IsCanceled(ctx, goal.GoalSetID, goal.UniqueName)
		if err != nil {
			return false, "", zerr.With(zerr.Wrap(err, "failed to check cancellation"), "goal", goal.ID())
		}
		if canceled {
			return true, "goal " + goal.ID() + " was canceled", nil
		}
	}

	latest, err := d.Store.Get(ctx, goal.GoalSetID, goal.UniqueName)
	switch {
	case errors.Is(err, domain.ErrGoalNotFound):
		return false, "", nil
	case err != nil:
		return false, "", zerr.With(zerr.Wrap(err, "failed to read goal"), "goal", goal.ID())
	case latest.State == domain.StateCanceled:
		return true, "goal " + goal.ID() + " was canceled", nil
	case latest.Version > goal.Version:
		return true, fmt.Sprintf("goal %s was superseded by version %d", goal.ID(), latest.Version), nil
	}
	return false, "", nil
}

// dispatchable reports whether a goal in state may be executed. Inside an
// isolated job the goal was already moved to in_process by the scheduler.
func (d *Dispatcher) dispatchable(state domain.GoalState) bool {
	if state.IsRequestedLike() {
		return true
	}
	return d.cfg.Isolation.Isolated && state == domain.StateInProcess
}

func (d *Dispatcher) selectScheduler(inv *domain.Invocation) ports.GoalScheduler {
	for _, s := range d.Schedulers {
		if s.Supports(inv) {
			return s
		}
	}
	return nil
}

func (d *Dispatcher) openLog(ctx context.Context, inv *domain.Invocation) ports.ProgressLog {
	if d.Logs == nil {
		return discardLog{}
	}
	l, err := d.Logs.Open(ctx, inv.Goal, inv.CorrelationID)
	if err != nil {
		d.Logger.Error(zerr.Wrap(err, "progress output for this goal is discarded"))
		return discardLog{}
	}
	return l
}

func (d *Dispatcher) writeHeader(w io.Writer, inv *domain.Invocation) {
	g := inv.Goal
	_, _ = fmt.Fprintf(w, "Executing %s (%s)\n", goalName(g), g.UniqueName)
	_, _ = fmt.Fprintf(w, "  repository:  %s\n", g.Repo.Slug())
	_, _ = fmt.Fprintf(w, "  sha:         %s\n", g.SHA)
	_, _ = fmt.Fprintf(w, "  goal set:    %s\n", g.GoalSetID)
	_, _ = fmt.Fprintf(w, "  correlation: %s\n", inv.CorrelationID)
	_, _ = fmt.Fprintf(w, "  executor:    %s %s\n\n", d.cfg.Registration, d.Version)
}

func (d *Dispatcher) writeFooter(w io.Writer, res domain.ExecutionResult, elapsed time.Duration) {
	body, err := json.Marshal(res)
	if err != nil {
		body = []byte(res.String())
	}
	_, _ = fmt.Fprintf(w, "\nResult: %s\nDuration: %s\n", body, elapsed.Round(time.Millisecond))
}

func commandEnvironment(inv *domain.Invocation) map[string]string {
	env := maps.Clone(inv.Implementation.Environment)
	if env == nil {
		env = make(map[string]string)
	}
	env[domain.EnvGoalSetID] = inv.Goal.GoalSetID
	env[domain.EnvGoalUniqueName] = inv.Goal.UniqueName
	env[domain.EnvCorrelationID] = inv.CorrelationID
	maps.Copy(env, inv.Credentials)
	return env
}

func goalName(g domain.Goal) string {
	if g.Name != "" {
		return g.Name
	}
	return g.UniqueName
}

type discardLog struct{}

func (discardLog) Write(p []byte) (int, error) { return len(p), nil }

func (discardLog) Name() string { return "discard" }

func (discardLog) Flush(context.Context) error { return nil }

func (discardLog) Close(context.Context) error { return nil }
