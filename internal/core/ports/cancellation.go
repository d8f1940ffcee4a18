package ports

import "context"

// CancellationRegistry records goals that must not be dispatched.
//
//go:generate mockgen -source=cancellation.go -destination=mocks/mock_cancellation.go -package=mocks
type CancellationRegistry interface {
	// Cancel marks a goal as canceled.
	Cancel(ctx context.Context, goalSetID, uniqueName string) error
	// IsCanceled reports whether a goal carries a cancellation marker.
	IsCanceled(ctx context.Context, goalSetID, uniqueName string) (bool, error)
}
