package ports

import (
	"context"
	"io"

	"go.trai.ch/goalkeeper/internal/core/domain"
)

// ArtifactCache stores build outputs keyed by repository, commit and classifier.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ArtifactCache interface {
	// Put captures the files below workdir matching patterns.
	Put(ctx context.Context, key domain.CacheKey, workdir string, patterns []string, log io.Writer) error

	// Get restores the archive for key into workdir. It reports false on a miss.
	Get(ctx context.Context, key domain.CacheKey, workdir string, log io.Writer) (bool, error)

	// Remove deletes the archive for key. Removing a missing key is not an error.
	Remove(ctx context.Context, key domain.CacheKey) error
}
