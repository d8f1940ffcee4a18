package progresslog

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Log is a buffered progress log bound to one sink entry.
type Log struct {
	name    string
	sink    Sink
	batcher *Batcher
}

var _ ports.ProgressLog = (*Log)(nil)

// Write buffers p.
func (l *Log) Write(p []byte) (int, error) {
	return l.batcher.Write(p)
}

// Name returns the hierarchical log name.
func (l *Log) Name() string {
	return l.name
}

// Flush delivers buffered output.
func (l *Log) Flush(ctx context.Context) error {
	return l.batcher.Flush(ctx)
}

// Close delivers remaining output and marks the log closed in the sink.
func (l *Log) Close(ctx context.Context) error {
	flushErr := l.batcher.Close(ctx)
	if err := l.sink.Close(ctx, l.name); err != nil {
		return err
	}
	return flushErr
}

// Factory opens progress logs on one sink.
type Factory struct {
	sink        Sink
	workspaceID string
	opts        BatcherOptions
}

var _ ports.ProgressLogFactory = (*Factory)(nil)

// NewFactory creates a Factory. Background flush failures are reported to logger.
func NewFactory(sink Sink, workspaceID string, cfg domain.ProgressLogConfig, clock clockwork.Clock, logger ports.Logger) *Factory {
	return &Factory{
		sink:        sink,
		workspaceID: workspaceID,
		opts: BatcherOptions{
			SizeLimit:   cfg.BufferSize,
			TimeLimit:   cfg.FlushInterval,
			MaxAttempts: cfg.MaxAttempts,
			MaxPending:  cfg.MaxPending,
			Clock:       clock,
			OnError:     logger.Error,
		},
	}
}

// Open starts a progress log for one execution of goal.
func (f *Factory) Open(_ context.Context, goal domain.Goal, correlationID string) (ports.ProgressLog, error) {
	if err := goal.Validate(); err != nil {
		return nil, zerr.Wrap(err, "cannot open progress log")
	}

	name := strings.Join(domain.ProgressLogPath(f.workspaceID, goal, correlationID), "/")
	l := &Log{name: name, sink: f.sink}
	l.batcher = NewBatcher(f.opts, func(ctx context.Context, data []byte) error {
		return f.sink.Append(ctx, name, data)
	})
	return l, nil
}
