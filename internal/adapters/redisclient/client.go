// Package redisclient provides the shared redis connection.
package redisclient

import (
	"context"
	"time"

	"github.com/grindlemire/graft"
	"github.com/redis/go-redis/v9"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the redis client Graft node.
const NodeID graft.ID = "adapter.redis_client"

const pingTimeout = 5 * time.Second

func init() {
	graft.Register(graft.Node[*redis.Client]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*redis.Client, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(ctx, cfg.Redis)
		},
	})
}

// New connects to the configured redis server. It returns nil when no
// address is configured.
func New(ctx context.Context, cfg domain.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, zerr.With(zerr.Wrap(err, "redis ping failed"), "addr", cfg.Addr)
	}
	return client, nil
}
