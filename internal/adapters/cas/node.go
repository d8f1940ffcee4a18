package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the artifact cache Graft node.
const NodeID graft.ID = "adapter.artifact_cache"

func init() {
	graft.Register(graft.Node[ports.ArtifactCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ArtifactCache, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(cfg.Cache.Root), nil
		},
	})
}
