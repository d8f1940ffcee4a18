package kube

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/adapters/logger"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the Kubernetes scheduler Graft node.
const NodeID graft.ID = "adapter.kube_scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return FromConfig(cfg, log)
		},
	})
}

// FromConfig creates the scheduler when isolation is enabled. It returns nil
// when isolation is off or the process already runs inside a job.
func FromConfig(cfg *domain.Config, log ports.Logger) (*Scheduler, error) {
	if cfg.Isolation.Mode == domain.IsolationOff || cfg.Isolation.Isolated {
		return nil, nil
	}

	client, err := NewClientset()
	if err != nil {
		return nil, err
	}
	return NewScheduler(client, Options{
		Isolation:    cfg.Isolation,
		Registration: cfg.Registration,
		WorkspaceID:  cfg.WorkspaceID,
		Clock:        clockwork.NewRealClock(),
		Logger:       log,
	}), nil
}
