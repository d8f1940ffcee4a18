package dispatcher

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/adapters/cancel"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/cas"         //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/config"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/goalstore"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/kube"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/logger"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/progresslog" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/shell"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/signing"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/adapters/telemetry"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/goalkeeper/internal/build"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

// NodeID is the unique identifier for the dispatcher Graft node.
const NodeID graft.ID = "engine.dispatcher"

func init() {
	graft.Register(graft.Node[*Dispatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			goalstore.NodeID,
			kube.NodeID,
			shell.NodeID,
			cas.NodeID,
			progresslog.NodeID,
			signing.NodeID,
			cancel.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Dispatcher, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.GoalStore](ctx)
			if err != nil {
				return nil, err
			}

			kubeScheduler, err := graft.Dep[*kube.Scheduler](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.ArtifactCache](ctx)
			if err != nil {
				return nil, err
			}

			logs, err := graft.Dep[ports.ProgressLogFactory](ctx)
			if err != nil {
				return nil, err
			}

			keyring, err := graft.Dep[*signing.Keyring](ctx)
			if err != nil {
				return nil, err
			}

			cancellations, err := graft.Dep[ports.CancellationRegistry](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			var schedulers []ports.GoalScheduler
			if kubeScheduler != nil {
				schedulers = append(schedulers, kubeScheduler)
			}

			return New(cfg, Deps{
				Store:         store,
				Schedulers:    schedulers,
				Executor:      executor,
				Cache:         cache,
				Logs:          logs,
				Signer:        keyring,
				Verifier:      keyring,
				Cancellations: cancellations,
				Tracer:        tracer,
				Logger:        log,
				Clock:         clockwork.NewRealClock(),
				Version:       build.Version,
			}), nil
		},
	})
}
