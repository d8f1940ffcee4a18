// Package goalstore implements the append-only goal store.
package goalstore

import (
	"context"
	"sort"
	"sync"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// MemoryStore keeps every goal version in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	versions map[string][]domain.Goal
}

var _ ports.GoalStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[string][]domain.Goal)}
}

// Query returns the latest version of each matching goal ordered by goal set and unique name.
func (s *MemoryStore) Query(_ context.Context, q domain.GoalQuery) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Goal
	for _, versions := range s.versions {
		latest := versions[len(versions)-1]
		if q.Matches(latest) {
			out = append(out, latest.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GoalSetID != out[j].GoalSetID {
			return out[i].GoalSetID < out[j].GoalSetID
		}
		return out[i].UniqueName < out[j].UniqueName
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Get returns the latest version of a goal.
func (s *MemoryStore) Get(_ context.Context, goalSetID, uniqueName string) (domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, ok := s.versions[storeKey(goalSetID, uniqueName)]
	if !ok {
		return domain.Goal{}, domain.ErrGoalNotFound
	}
	return versions[len(versions)-1].Clone(), nil
}

// History returns every stored version of a goal, oldest first.
func (s *MemoryStore) History(_ context.Context, goalSetID, uniqueName string) ([]domain.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, ok := s.versions[storeKey(goalSetID, uniqueName)]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	out := make([]domain.Goal, len(versions))
	for i, g := range versions {
		out[i] = g.Clone()
	}
	return out, nil
}

// Create stores the first version of a goal.
func (s *MemoryStore) Create(_ context.Context, goal domain.Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(goal.GoalSetID, goal.UniqueName)
	if _, ok := s.versions[key]; ok {
		return domain.ErrGoalExists
	}
	if goal.Version == 0 {
		goal.Version = 1
	}
	s.versions[key] = []domain.Goal{goal.Clone()}
	return nil
}

// Update appends next if it directly follows the latest stored version.
func (s *MemoryStore) Update(_ context.Context, next domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(next.GoalSetID, next.UniqueName)
	versions, ok := s.versions[key]
	if !ok {
		return domain.ErrGoalNotFound
	}
	if versions[len(versions)-1].Version != next.Version-1 {
		return domain.ErrStaleGoalVersion
	}
	s.versions[key] = append(versions, next.Clone())
	return nil
}

func storeKey(goalSetID, uniqueName string) string {
	return goalSetID + "\x00" + uniqueName
}
