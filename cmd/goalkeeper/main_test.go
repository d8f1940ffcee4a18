package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/goalkeeper/internal/app"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newTestApp(store *mocks.MockGoalStore, logger *mocks.MockLogger) *app.App {
	return app.New(&domain.Config{
		Registration: "web-executor",
		Serve:        domain.ServeConfig{PollInterval: time.Hour, Concurrency: 1},
	}, app.Deps{Store: store, Logger: logger})
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	application := newTestApp(mocks.NewMockGoalStore(ctrl), mockLogger)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when a command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockGoalStore(ctrl)
	mockStore.EXPECT().Get(gomock.Any(), "gs-1", "build").Return(domain.Goal{}, domain.ErrGoalNotFound)

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).Times(1)

	application := newTestApp(mockStore, mockLogger)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"goals", "retry", "gs-1", "build"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that serve stops once the context is canceled.
func TestRun_Signal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	polled := make(chan struct{}, 1)
	mockStore := mocks.NewMockGoalStore(ctrl)
	mockStore.EXPECT().Query(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.GoalQuery) ([]domain.Goal, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, nil
		},
	).AnyTimes()

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	application := newTestApp(mockStore, mockLogger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"serve"}, io.Discard, func(context.Context) (*app.Components, func(), error) {
			return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
		})
	}()

	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("serve never polled the store")
	}
	cancel()

	select {
	case ret := <-errCh:
		assert.Equal(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
