// Package promoter requests planned goals once their preconditions allow it.
package promoter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Actor is recorded in the provenance of promoted versions.
const Actor = "promoter"

// Promoter moves planned goals of this registration forward when nothing blocks them.
type Promoter struct {
	store        ports.GoalStore
	signer       ports.GoalSigner
	logger       ports.Logger
	clock        clockwork.Clock
	policy       domain.DependencyPolicy
	registration string
	version      string
}

// New creates a Promoter. signer may be nil.
func New(
	cfg *domain.Config,
	store ports.GoalStore,
	signer ports.GoalSigner,
	logger ports.Logger,
	clock clockwork.Clock,
	version string,
) *Promoter {
	return &Promoter{
		store:        store,
		signer:       signer,
		logger:       logger,
		clock:        clock,
		policy:       cfg.DependencyPolicy(),
		registration: cfg.Registration,
		version:      version,
	}
}

// Promote requests every planned goal in the goal set whose preconditions are
// satisfied. Goals that require pre-approval move to waiting_for_pre_approval.
// It returns the versions it wrote.
func (p *Promoter) Promote(ctx context.Context, goalSetID string) ([]domain.Goal, error) {
	goals, err := p.store.Query(ctx, domain.GoalQuery{GoalSetID: goalSetID})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to load goal set"), "goal_set_id", goalSetID)
	}

	set := domain.NewGoalSet(goalSetID, goals)
	lookup := set.Lookup()

	var (
		promoted []domain.Goal
		errs     []error
	)
	for _, g := range set.Goals {
		if g.State != domain.StatePlanned || g.Registration != p.registration {
			continue
		}
		if !domain.PreconditionsSatisfied(g, lookup, p.policy) {
			continue
		}

		next, err := p.promote(ctx, g)
		switch {
		case errors.Is(err, domain.ErrStaleGoalVersion):
			p.logger.Warn(fmt.Sprintf("Goal %s changed while promoting, skipping", g.ID()))
		case err != nil:
			errs = append(errs, zerr.With(err, "goal", g.ID()))
		default:
			promoted = append(promoted, next)
		}
	}
	return promoted, errors.Join(errs...)
}

func (p *Promoter) promote(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	state := domain.StateRequested
	if g.PreApprovalRequired {
		state = domain.StateWaitingForPreApproval
	}

	next := g.Next(domain.GoalPatch{
		State: state,
		Provenance: domain.Provenance{
			Registration: p.registration,
			Version:      p.version,
			Actor:        Actor,
		},
	}, p.clock.Now())

	if p.signer != nil {
		signed, err := p.signer.Sign(next)
		if err != nil {
			return domain.Goal{}, zerr.Wrap(err, "failed to sign goal")
		}
		next = signed
	}

	if err := p.store.Update(ctx, next); err != nil {
		return domain.Goal{}, err
	}
	return next, nil
}
