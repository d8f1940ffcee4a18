package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the configuration Graft node.
const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*domain.Config, error) {
			return loadFromEnv(NewLoader(), os.Getenv)
		},
	})
}

// loadFromEnv loads the configuration file named by the environment.
func loadFromEnv(loader ports.ConfigLoader, getenv func(string) string) (*domain.Config, error) {
	path := PathFromEnv(getenv)
	cfg, err := loader.Load(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to load configuration"), "path", path)
	}
	return cfg, nil
}
