// Package progresslog delivers goal progress output to a durable sink.
package progresslog

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush interval if not specified.
	DefaultTimeLimit = time.Second
	// DefaultMaxAttempts is how often Close offers the remaining output to the sink.
	DefaultMaxAttempts = 3
	// DefaultMaxPending bounds the output held while the sink is failing (1MB).
	DefaultMaxPending = 1 << 20
)

// FlushFunc delivers one chunk of buffered output.
type FlushFunc func(ctx context.Context, data []byte) error

// Batcher buffers writes until a size limit or time limit is reached.
// Output the sink rejects is kept ahead of newer output and retried on the
// next tick, so a failing sink is not hammered by every Write. At most
// MaxPending bytes are held; the oldest bytes beyond that are dropped and
// reported. It is thread-safe.
type Batcher struct {
	sizeLimit   int
	timeLimit   time.Duration
	maxAttempts int
	maxPending  int
	onFlush     FlushFunc
	onError     func(error)

	mu       sync.Mutex
	buffer   *bytes.Buffer
	pending  []byte
	attempts int
	ticker   clockwork.Ticker
	stopCh   chan struct{}
	doneCh   chan struct{}
	closed   bool
}

// BatcherOptions configures a Batcher. Zero values select the defaults.
type BatcherOptions struct {
	SizeLimit   int
	TimeLimit   time.Duration
	MaxAttempts int
	MaxPending  int
	Clock       clockwork.Clock
	// OnError receives failures from background flushes.
	OnError func(error)
}

// NewBatcher returns a running Batcher. Call Close to stop the background ticker.
func NewBatcher(opts BatcherOptions, onFlush FlushFunc) *Batcher {
	if opts.SizeLimit <= 0 {
		opts.SizeLimit = DefaultSizeLimit
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxPending <= 0 {
		opts.MaxPending = DefaultMaxPending
	}
	opts.MaxPending = max(opts.MaxPending, opts.SizeLimit)
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.OnError == nil {
		opts.OnError = func(error) {}
	}

	b := &Batcher{
		sizeLimit:   opts.SizeLimit,
		timeLimit:   opts.TimeLimit,
		maxAttempts: opts.MaxAttempts,
		maxPending:  opts.MaxPending,
		onFlush:     onFlush,
		onError:     opts.OnError,
		buffer:      new(bytes.Buffer),
		ticker:      opts.Clock.NewTicker(opts.TimeLimit),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	go b.run()
	return b
}

// Write appends p to the buffer and flushes once the size limit is reached.
// While earlier output awaits a retry, writes only buffer. A failed
// size-triggered flush is reported through OnError; the write itself succeeds
// because the data is retained for retry.
func (b *Batcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, domain.ErrProgressLogClosed
	}

	n, _ := b.buffer.Write(p)
	switch {
	case b.pending != nil:
		b.trimLocked()
	case b.buffer.Len() >= b.sizeLimit:
		if err := b.flushLocked(context.Background()); err != nil {
			b.onError(err)
		}
		b.ticker.Reset(b.timeLimit)
	}
	return n, nil
}

// Flush forces buffered data to the sink.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	return b.flushLocked(ctx)
}

// Close stops the background flusher and performs a final flush, retrying up
// to MaxAttempts times. Close is idempotent; only the first call flushes.
func (b *Batcher) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.stopCh)

	var err error
	for range b.maxAttempts {
		if err = b.flushLocked(ctx); err == nil {
			break
		}
	}
	if err != nil {
		err = zerr.With(err, "dropped_bytes", len(b.pending))
		b.pending = nil
	}
	b.mu.Unlock()

	<-b.doneCh
	return err
}

func (b *Batcher) run() {
	defer close(b.doneCh)
	for {
		select {
		case <-b.ticker.Chan():
			if err := b.Flush(context.Background()); err != nil {
				b.onError(err)
			}
		case <-b.stopCh:
			b.ticker.Stop()
			return
		}
	}
}

// flushLocked must be called with mu held.
func (b *Batcher) flushLocked(ctx context.Context) error {
	if b.buffer.Len() == 0 && len(b.pending) == 0 {
		return nil
	}

	data := make([]byte, 0, len(b.pending)+b.buffer.Len())
	data = append(data, b.pending...)
	data = append(data, b.buffer.Bytes()...)
	b.buffer.Reset()

	if err := b.onFlush(ctx, data); err != nil {
		b.attempts++
		b.pending = data
		b.trimLocked()
		return zerr.With(zerr.Wrap(err, domain.ErrProgressLogFlushFailed.Error()), "attempt", b.attempts)
	}

	b.pending = nil
	b.attempts = 0
	return nil
}

// trimLocked drops the oldest held bytes beyond maxPending. mu must be held.
func (b *Batcher) trimLocked() {
	over := len(b.pending) + b.buffer.Len() - b.maxPending
	if over <= 0 {
		return
	}

	fromPending := min(over, len(b.pending))
	b.pending = b.pending[fromPending:]
	if fromPending < over {
		b.buffer.Next(over - fromPending)
	}
	b.onError(zerr.With(domain.ErrProgressLogOverflow, "dropped_bytes", over))
}
