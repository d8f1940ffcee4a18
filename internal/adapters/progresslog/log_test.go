package progresslog_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/progresslog"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func testGoal() domain.Goal {
	return domain.Goal{
		GoalSetID:   "gs-1",
		UniqueName:  "build#goals.ts:12",
		Environment: "0-code",
		Name:        "build",
		Repo:        domain.Repo{Owner: "acme", Name: "web"},
		SHA:         "abc123",
	}
}

func TestFactory_FileSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := t.TempDir()
	sink := progresslog.NewFileSink(dir)
	f := progresslog.NewFactory(sink, "T1", domain.ProgressLogConfig{}, clockwork.NewFakeClock(), mocks.NewMockLogger(ctrl))

	log, err := f.Open(context.Background(), testGoal(), "corr-1")
	require.NoError(t, err)
	assert.Equal(t, "T1/acme/web/abc123/0-code/build/gs-1/corr-1", log.Name())

	_, err = log.Write([]byte("step 1\n"))
	require.NoError(t, err)
	_, err = log.Write([]byte("step 2\n"))
	require.NoError(t, err)
	require.NoError(t, log.Close(context.Background()))

	data, err := os.ReadFile(sink.Path(log.Name()))
	require.NoError(t, err)
	assert.Equal(t, "step 1\nstep 2\n", string(data))

	_, err = log.Write([]byte("late"))
	require.ErrorIs(t, err, domain.ErrProgressLogClosed)
}

func TestFactory_RedisSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sink := progresslog.NewRedisSink(client, "gk:")
	f := progresslog.NewFactory(sink, "T1", domain.ProgressLogConfig{}, clockwork.NewFakeClock(), mocks.NewMockLogger(ctrl))

	log, err := f.Open(context.Background(), testGoal(), "corr-1")
	require.NoError(t, err)
	_, err = log.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, log.Flush(context.Background()))
	require.NoError(t, log.Close(context.Background()))

	entries, err := client.XRange(context.Background(), sink.StreamKey(log.Name()), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0].Values["data"])
	assert.Equal(t, "true", entries[1].Values["closed"])
}

func TestConsoleSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		logger.EXPECT().Info("[0-code/build] compiling"),
		logger.EXPECT().Info("[0-code/build] done"),
	)

	sink := progresslog.NewConsoleSink(logger)
	name := strings.Join(domain.ProgressLogPath("T1", testGoal(), "corr-1"), "/")
	require.NoError(t, sink.Append(context.Background(), name, []byte("compiling\ndone\n")))
	require.NoError(t, sink.Close(context.Background(), name))
}

func TestFactory_RejectsGoalWithoutKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := progresslog.NewFactory(progresslog.NewFileSink(t.TempDir()), "T1", domain.ProgressLogConfig{}, clockwork.NewFakeClock(), mocks.NewMockLogger(ctrl))

	_, err := f.Open(context.Background(), domain.Goal{}, "corr")
	require.ErrorContains(t, err, domain.ErrMissingGoalKey.Error())
}

func TestNewSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)

	cfg := &domain.Config{ProgressLog: domain.ProgressLogConfig{Sink: domain.SinkConsole}}
	assert.IsType(t, &progresslog.ConsoleSink{}, progresslog.NewSink(cfg, nil, logger))

	cfg.ProgressLog.Sink = domain.SinkRedis
	assert.IsType(t, &progresslog.FileSink{}, progresslog.NewSink(cfg, nil, logger))

	cfg.ProgressLog.Sink = domain.SinkFile
	assert.IsType(t, &progresslog.FileSink{}, progresslog.NewSink(cfg, nil, logger))
}
