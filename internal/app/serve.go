package app

import (
	"context"
	"fmt"
	"sync"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var dispatchableStates = []domain.GoalState{
	domain.StateRequested,
	domain.StateApproved,
	domain.StatePreApproved,
}

// Serve polls the goal store and dispatches requested goals of this
// registration until ctx is canceled. Dispatches already running are allowed
// to finish before Serve returns.
func (a *App) Serve(ctx context.Context) error {
	interval := a.cfg.Serve.PollInterval
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}

	g := new(errgroup.Group)
	g.SetLimit(max(a.cfg.Serve.Concurrency, 1))

	a.logger.Info(fmt.Sprintf("Serving goals for '%s' every %s", a.cfg.Registration, interval))

	ticker := a.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.poll(ctx, g)

		select {
		case <-ctx.Done():
			_ = g.Wait()
			return nil
		case <-ticker.Chan():
		}
	}
}

// poll starts a dispatch for every requested goal that is not already in flight.
// When all workers are busy the remaining goals wait for the next poll.
func (a *App) poll(ctx context.Context, g *errgroup.Group) {
	goals, err := a.store.Query(ctx, domain.GoalQuery{
		Registration: a.cfg.Registration,
		States:       dispatchableStates,
	})
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Error(zerr.Wrap(err, "failed to poll goals"))
		}
		return
	}

	for _, goal := range goals {
		key := goal.ID()
		if !a.inFlight.add(key) {
			continue
		}

		started := g.TryGo(func() error {
			defer a.inFlight.remove(key)
			a.dispatchAndPromote(context.WithoutCancel(ctx), goal)
			return nil
		})
		if !started {
			a.inFlight.remove(key)
			return
		}
	}
}

// keySet tracks goals with a dispatch in progress.
type keySet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newKeySet() *keySet {
	return &keySet{keys: make(map[string]struct{})}
}

// add reports false if key is already present.
func (s *keySet) add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *keySet) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}
