package progresslog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/progresslog"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

type collector struct {
	mu     sync.Mutex
	data   []byte
	calls  int
	failN  int
	errors []error
}

func (c *collector) flush(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failN > 0 {
		c.failN--
		return errors.New("sink unavailable")
	}
	c.data = append(c.data, data...)
	return nil
}

func (c *collector) onError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.data)
}

func TestBatcher_FlushOnSize(t *testing.T) {
	c := &collector{}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit: 5,
		Clock:     clockwork.NewFakeClock(),
	}, c.flush)
	defer func() { _ = b.Close(context.Background()) }()

	_, err := b.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.String())

	_, err = b.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, "123456", c.String())
}

func TestBatcher_FlushOnTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := &collector{}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit: 100,
		TimeLimit: time.Second,
		Clock:     clock,
	}, c.flush)
	defer func() { _ = b.Close(context.Background()) }()

	_, err := b.Write([]byte("tick"))
	require.NoError(t, err)
	assert.Empty(t, c.String())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return c.String() == "tick" }, time.Second, 5*time.Millisecond)
}

func TestBatcher_RetriesFailedChunkInOrder(t *testing.T) {
	c := &collector{failN: 1}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit:   1024,
		MaxAttempts: 3,
		Clock:       clockwork.NewFakeClock(),
	}, c.flush)
	defer func() { _ = b.Close(context.Background()) }()

	_, err := b.Write([]byte("first "))
	require.NoError(t, err)
	err = b.Flush(context.Background())
	require.ErrorContains(t, err, domain.ErrProgressLogFlushFailed.Error())

	_, err = b.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, b.Flush(context.Background()))

	assert.Equal(t, "first second", c.String())
}

func TestBatcher_WritesDoNotConsumeRetries(t *testing.T) {
	c := &collector{failN: 3}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit:   4,
		MaxAttempts: 3,
		Clock:       clockwork.NewFakeClock(),
		OnError:     c.onError,
	}, c.flush)
	defer func() { _ = b.Close(context.Background()) }()

	for _, chunk := range []string{"aaaa", "bbbb", "cccc", "dddd"} {
		_, err := b.Write([]byte(chunk))
		require.NoError(t, err)
	}

	c.mu.Lock()
	assert.Equal(t, 1, c.calls)
	c.mu.Unlock()

	require.Error(t, b.Flush(context.Background()))
	require.Error(t, b.Flush(context.Background()))
	require.NoError(t, b.Flush(context.Background()))

	assert.Equal(t, "aaaabbbbccccdddd", c.String())
}

func TestBatcher_BoundsHeldBytes(t *testing.T) {
	c := &collector{failN: 100}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit:  4,
		MaxPending: 8,
		Clock:      clockwork.NewFakeClock(),
		OnError:    c.onError,
	}, c.flush)
	defer func() { _ = b.Close(context.Background()) }()

	for _, chunk := range []string{"aaaa", "bbbb", "cccc"} {
		_, err := b.Write([]byte(chunk))
		require.NoError(t, err)
	}

	c.mu.Lock()
	require.Len(t, c.errors, 2)
	assert.ErrorContains(t, c.errors[1], domain.ErrProgressLogOverflow.Error())
	c.failN = 0
	c.mu.Unlock()

	require.NoError(t, b.Flush(context.Background()))
	assert.Equal(t, "bbbbcccc", c.String())
}

func TestBatcher_CloseGivesUpAfterMaxAttempts(t *testing.T) {
	c := &collector{failN: 5}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit:   1024,
		MaxAttempts: 2,
		Clock:       clockwork.NewFakeClock(),
	}, c.flush)

	_, err := b.Write([]byte("lost"))
	require.NoError(t, err)

	err = b.Close(context.Background())
	require.ErrorContains(t, err, domain.ErrProgressLogFlushFailed.Error())

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 2, c.calls)
	assert.Empty(t, c.data)
}

func TestBatcher_SizeFlushFailureIsReported(t *testing.T) {
	c := &collector{failN: 1}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{
		SizeLimit: 2,
		Clock:     clockwork.NewFakeClock(),
		OnError:   c.onError,
	}, c.flush)

	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, b.Close(context.Background()))
	assert.Equal(t, "abc", c.String())

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.errors, 1)
}

func TestBatcher_WriteAfterClose(t *testing.T) {
	c := &collector{}
	b := progresslog.NewBatcher(progresslog.BatcherOptions{Clock: clockwork.NewFakeClock()}, c.flush)

	_, err := b.Write([]byte("done"))
	require.NoError(t, err)
	require.NoError(t, b.Close(context.Background()))
	require.NoError(t, b.Close(context.Background()))
	assert.Equal(t, "done", c.String())

	_, err = b.Write([]byte("late"))
	require.ErrorIs(t, err, domain.ErrProgressLogClosed)
}
