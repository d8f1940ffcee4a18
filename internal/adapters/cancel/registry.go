// Package cancel records goals that operators canceled so the dispatcher
// stops before executing them.
package cancel

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// MarkerTTL bounds how long a cancellation marker is kept in redis.
const MarkerTTL = 24 * time.Hour

// MemoryRegistry keeps cancellation markers in process memory.
type MemoryRegistry struct {
	mu       sync.RWMutex
	canceled map[string]struct{}
}

var _ ports.CancellationRegistry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{canceled: make(map[string]struct{})}
}

// Cancel marks a goal as canceled.
func (r *MemoryRegistry) Cancel(_ context.Context, goalSetID, uniqueName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canceled[markerID(goalSetID, uniqueName)] = struct{}{}
	return nil
}

// IsCanceled reports whether a goal carries a cancellation marker.
func (r *MemoryRegistry) IsCanceled(_ context.Context, goalSetID, uniqueName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.canceled[markerID(goalSetID, uniqueName)]
	return ok, nil
}

// RedisRegistry shares cancellation markers between executor replicas.
//
// Markers are stored under:
//
//	<prefix>cancel:<goalSetId>/<uniqueName>
type RedisRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ ports.CancellationRegistry = (*RedisRegistry)(nil)

// NewRedisRegistry creates a RedisRegistry.
func NewRedisRegistry(client *redis.Client, prefix string) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: prefix, ttl: MarkerTTL}
}

func (r *RedisRegistry) key(goalSetID, uniqueName string) string {
	return r.prefix + "cancel:" + markerID(goalSetID, uniqueName)
}

// Cancel marks a goal as canceled.
func (r *RedisRegistry) Cancel(ctx context.Context, goalSetID, uniqueName string) error {
	if err := r.client.Set(ctx, r.key(goalSetID, uniqueName), time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to record cancellation"), "goal", markerID(goalSetID, uniqueName))
	}
	return nil
}

// IsCanceled reports whether a goal carries a cancellation marker.
func (r *RedisRegistry) IsCanceled(ctx context.Context, goalSetID, uniqueName string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(goalSetID, uniqueName)).Result()
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read cancellation"), "goal", markerID(goalSetID, uniqueName))
	}
	return n > 0, nil
}

func markerID(goalSetID, uniqueName string) string {
	return domain.GoalKey{GoalSetID: goalSetID, UniqueName: uniqueName}.ID()
}
