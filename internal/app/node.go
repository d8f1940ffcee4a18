package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/adapters/cancel"    //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/goalstore" //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/kube"      //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/adapters/signing"   //nolint:depguard // Wired in app layer
	"go.trai.ch/goalkeeper/internal/build"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/goalkeeper/internal/engine/dispatcher"
	"go.trai.ch/goalkeeper/internal/engine/promoter"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			goalstore.NodeID,
			dispatcher.NodeID,
			promoter.NodeID,
			cancel.NodeID,
			signing.NodeID,
			cas.NodeID,
			kube.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.GoalStore](ctx)
	if err != nil {
		return nil, err
	}

	d, err := graft.Dep[*dispatcher.Dispatcher](ctx)
	if err != nil {
		return nil, err
	}

	p, err := graft.Dep[*promoter.Promoter](ctx)
	if err != nil {
		return nil, err
	}

	cancels, err := graft.Dep[ports.CancellationRegistry](ctx)
	if err != nil {
		return nil, err
	}

	keyring, err := graft.Dep[*signing.Keyring](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[ports.ArtifactCache](ctx)
	if err != nil {
		return nil, err
	}

	scheduler, err := graft.Dep[*kube.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Store:         store,
		Dispatcher:    d,
		Promoter:      p,
		Cancellations: cancels,
		Signer:        keyring,
		Cache:         cache,
		Logger:        log,
		Clock:         clockwork.NewRealClock(),
		Version:       build.Version,
	}
	if scheduler != nil {
		deps.Sweeper = scheduler.Sweeper()
	}
	return New(cfg, deps), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
		Config: cfg,
	}, nil
}
