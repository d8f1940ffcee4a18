package config_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/config"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("uses the configured path", func(t *testing.T) {
		loader := mocks.NewMockConfigLoader(gomock.NewController(t))
		want := &domain.Config{Registration: "web-executor"}
		loader.EXPECT().Load("/etc/goalkeeper/prod.toml").Return(want, nil)

		got, err := config.LoadFromEnv(loader, envMap(map[string]string{
			domain.EnvConfig: "/etc/goalkeeper/prod.toml",
		}))
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("falls back to the default file", func(t *testing.T) {
		loader := mocks.NewMockConfigLoader(gomock.NewController(t))
		loader.EXPECT().Load(domain.ConfigFileName).Return(&domain.Config{}, nil)

		_, err := config.LoadFromEnv(loader, envMap(nil))
		require.NoError(t, err)
	})

	t.Run("keeps the cause", func(t *testing.T) {
		loader := mocks.NewMockConfigLoader(gomock.NewController(t))
		loader.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrConfigParseFailed)

		_, err := config.LoadFromEnv(loader, envMap(nil))
		require.ErrorIs(t, err, domain.ErrConfigParseFailed)
		assert.False(t, errors.Is(err, domain.ErrConfigReadFailed))
	})
}
