package goalstore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the goal store Graft node.
const NodeID graft.ID = "adapter.goal_store"

func init() {
	graft.Register(graft.Node[ports.GoalStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.GoalStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Store)
		},
	})
}

// New creates the goal store selected by the configuration.
func New(cfg domain.StoreConfig) (ports.GoalStore, error) {
	if cfg.Driver == domain.StoreSQLite {
		return OpenSQLiteStore(cfg.Path)
	}
	return NewMemoryStore(), nil
}
