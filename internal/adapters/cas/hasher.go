package cas

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"go.trai.ch/zerr"
)

// fileHash returns the XXHash of a file's content as 16 hex digits.
func fileHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is resolved below the cache workdir
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// archiveDigest returns the BLAKE3 digest of an archive file.
func archiveDigest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is derived from a validated cache key
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
