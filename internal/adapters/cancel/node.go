package cancel

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/redis/go-redis/v9"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/adapters/redisclient"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the cancellation registry Graft node.
const NodeID graft.ID = "adapter.cancellation"

func init() {
	graft.Register(graft.Node[ports.CancellationRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, redisclient.NodeID},
		Run: func(ctx context.Context) (ports.CancellationRegistry, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[*redis.Client](ctx)
			if err != nil {
				return nil, err
			}
			if client == nil {
				return NewMemoryRegistry(), nil
			}
			return NewRedisRegistry(client, cfg.Redis.Prefix), nil
		},
	})
}
