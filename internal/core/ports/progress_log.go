package ports

import (
	"context"
	"io"

	"go.trai.ch/goalkeeper/internal/core/domain"
)

// ProgressLog is a buffered, append-only log attached to one goal execution.
type ProgressLog interface {
	io.Writer
	// Name identifies the log, typically its hierarchical path.
	Name() string
	// Flush delivers buffered output.
	Flush(ctx context.Context) error
	// Close delivers remaining output and marks the log closed.
	Close(ctx context.Context) error
}

// ProgressLogFactory opens progress logs for goal executions.
//
//go:generate mockgen -source=progress_log.go -destination=mocks/mock_progress_log.go -package=mocks
type ProgressLogFactory interface {
	Open(ctx context.Context, goal domain.Goal, correlationID string) (ProgressLog, error)
}
