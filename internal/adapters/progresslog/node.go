package progresslog

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/adapters/logger"
	"go.trai.ch/goalkeeper/internal/adapters/redisclient"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the progress log factory Graft node.
const NodeID graft.ID = "adapter.progress_log"

func init() {
	graft.Register(graft.Node[ports.ProgressLogFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID, redisclient.NodeID},
		Run: func(ctx context.Context) (ports.ProgressLogFactory, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[*redis.Client](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(NewSink(cfg, client, log), cfg.WorkspaceID, cfg.ProgressLog, clockwork.NewRealClock(), log), nil
		},
	})
}

// NewSink selects the configured sink. The redis sink falls back to files
// when no client is available.
func NewSink(cfg *domain.Config, client *redis.Client, log ports.Logger) Sink {
	switch cfg.ProgressLog.Sink {
	case domain.SinkRedis:
		if client != nil {
			return NewRedisSink(client, cfg.Redis.Prefix)
		}
	case domain.SinkConsole:
		return NewConsoleSink(log)
	}
	return NewFileSink(cfg.ProgressLog.Dir)
}
