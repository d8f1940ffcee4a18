package cancel_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/cancel"
	"go.trai.ch/goalkeeper/internal/core/ports"
)

func registries(t *testing.T) map[string]ports.CancellationRegistry {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]ports.CancellationRegistry{
		"memory": cancel.NewMemoryRegistry(),
		"redis":  cancel.NewRedisRegistry(client, "gk:"),
	}
}

func TestRegistry_CancelAndCheck(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			canceled, err := reg.IsCanceled(ctx, "gs-1", "build")
			require.NoError(t, err)
			assert.False(t, canceled)

			require.NoError(t, reg.Cancel(ctx, "gs-1", "build"))

			canceled, err = reg.IsCanceled(ctx, "gs-1", "build")
			require.NoError(t, err)
			assert.True(t, canceled)

			canceled, err = reg.IsCanceled(ctx, "gs-1", "deploy")
			require.NoError(t, err)
			assert.False(t, canceled)
		})
	}
}

func TestRedisRegistry_KeyAndTTL(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := cancel.NewRedisRegistry(client, "gk:")
	require.NoError(t, reg.Cancel(context.Background(), "gs-1", "build"))

	assert.True(t, srv.Exists("gk:cancel:gs-1/build"))
	assert.Equal(t, cancel.MarkerTTL, srv.TTL("gk:cancel:gs-1/build"))

	srv.FastForward(cancel.MarkerTTL)
	canceled, err := reg.IsCanceled(context.Background(), "gs-1", "build")
	require.NoError(t, err)
	assert.False(t, canceled)
}
