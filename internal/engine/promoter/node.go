package promoter

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/goalstore" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/signing"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/build"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the promoter Graft node.
const NodeID graft.ID = "engine.promoter"

func init() {
	graft.Register(graft.Node[*Promoter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, goalstore.NodeID, signing.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Promoter, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.GoalStore](ctx)
			if err != nil {
				return nil, err
			}

			keyring, err := graft.Dep[*signing.Keyring](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(cfg, store, keyring, log, clockwork.NewRealClock(), build.Version), nil
		},
	})
}
