package signing

import (
	"context"
	"crypto/rsa"

	"github.com/grindlemire/graft"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

// NodeID is the unique identifier for the signing Graft node.
const NodeID graft.ID = "adapter.signing"

func init() {
	graft.Register(graft.Node[*Keyring]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (*Keyring, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return FromConfig(cfg.Signing)
		},
	})
}

// FromConfig loads the keys named by the signing configuration.
func FromConfig(cfg domain.SigningConfig) (*Keyring, error) {
	var private *rsa.PrivateKey
	if cfg.PrivateKey != "" {
		key, err := LoadPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		private = key
	}

	trusted, err := LoadPublicKeys(cfg.TrustedKeys)
	if err != nil {
		return nil, err
	}
	return NewKeyring(private, trusted...), nil
}
