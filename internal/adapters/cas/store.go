// Package cas implements the artifact cache: compressed archives of build
// outputs addressed by repository, commit and classifier.
package cas

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	archiveExt  = ".tar.zst"
	manifestExt = ".json"
)

// Store implements ports.ArtifactCache on a local or mounted directory.
type Store struct {
	root string
	now  func() time.Time
}

var _ ports.ArtifactCache = (*Store)(nil)

// NewStore creates a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root), now: time.Now}
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) paths(key domain.CacheKey) (archive, manifest string) {
	dir := filepath.Join(s.root, key.Dir())
	return filepath.Join(dir, key.Classifier+archiveExt), filepath.Join(dir, key.Classifier+manifestExt)
}

// Put archives the files below workdir matching patterns. Capturing zero
// files is not an error; any earlier entry for key is removed so a later Get
// misses instead of restoring stale files.
func (s *Store) Put(ctx context.Context, key domain.CacheKey, workdir string, patterns []string, log io.Writer) error {
	if err := key.Validate(); err != nil {
		return zerr.With(err, "classifier", key.Classifier)
	}

	files, err := resolveFiles(workdir, patterns)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}
	if len(files) == 0 {
		logf(log, "No files matched cache entry '%s'\n", key.Classifier)
		return s.Remove(ctx, key)
	}

	archivePath, manifestPath := s.paths(key)
	if err := os.MkdirAll(filepath.Dir(archivePath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}

	tmp, err := os.CreateTemp(filepath.Dir(archivePath), "."+key.Classifier+"-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Gone after a successful rename

	manifest, err := writeArchive(ctx, tmp, workdir, files)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error()), "classifier", key.Classifier)
	}

	digest, err := archiveDigest(tmpName)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}
	info, err := os.Stat(tmpName)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}

	manifest.Classifier = key.Classifier
	manifest.SHA = key.SHA
	manifest.Digest = digest
	manifest.Size = info.Size()
	manifest.CreatedAt = s.now().UTC()

	if err := os.Rename(tmpName, archivePath); err != nil {
		return zerr.Wrap(err, domain.ErrCacheArchiveFailed.Error())
	}
	if err := writeManifest(manifestPath, manifest); err != nil {
		return err
	}

	logf(log, "Cached %d files as '%s' (%d bytes)\n", len(manifest.Files), key.Classifier, manifest.Size)
	return nil
}

func writeArchive(ctx context.Context, w io.Writer, workdir string, files []string) (*Manifest, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	tw := tar.NewWriter(zw)

	manifest := &Manifest{Files: make([]ManifestFile, 0, len(files))}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := addFile(tw, workdir, name)
		if err != nil {
			return nil, zerr.With(err, "path", name)
		}
		manifest.Files = append(manifest.Files, entry)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func addFile(tw *tar.Writer, workdir, name string) (ManifestFile, error) {
	full := filepath.Join(workdir, filepath.FromSlash(name))
	info, err := os.Lstat(full)
	if err != nil {
		return ManifestFile{}, err
	}
	if !info.Mode().IsRegular() {
		return ManifestFile{}, zerr.New("only regular files can be cached")
	}

	hash, err := fileHash(full)
	if err != nil {
		return ManifestFile{}, err
	}

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return ManifestFile{}, err
	}

	f, err := os.Open(full) //nolint:gosec // Path is resolved below the cache workdir
	if err != nil {
		return ManifestFile{}, err
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(tw, f); err != nil {
		return ManifestFile{}, err
	}
	return ManifestFile{Path: name, Mode: info.Mode().Perm(), Size: info.Size(), Hash: hash}, nil
}

// Get restores the archive for key into workdir. A corrupt archive is
// removed and reported as a miss.
func (s *Store) Get(ctx context.Context, key domain.CacheKey, workdir string, log io.Writer) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, zerr.With(err, "classifier", key.Classifier)
	}

	archivePath, manifestPath := s.paths(key)
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error())
	}
	if manifest == nil {
		logf(log, "Cache miss for '%s'\n", key.Classifier)
		return false, nil
	}

	digest, err := archiveDigest(archivePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logf(log, "Cache miss for '%s'\n", key.Classifier)
		return false, nil
	case err != nil:
		return false, zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error())
	case digest != manifest.Digest:
		logf(log, "Discarding corrupt cache archive '%s'\n", key.Classifier)
		if err := s.Remove(ctx, key); err != nil {
			return false, err
		}
		return false, nil
	}

	f, err := os.Open(archivePath) //nolint:gosec // Path is derived from a validated cache key
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error())
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	expected := make(map[string]string, len(manifest.Files))
	for _, mf := range manifest.Files {
		expected[mf.Path] = mf.Hash
	}

	n, err := extractArchive(ctx, f, workdir, expected)
	if err != nil {
		return false, zerr.With(err, "classifier", key.Classifier)
	}

	logf(log, "Restored %d files from cache '%s'\n", n, key.Classifier)
	return true, nil
}

func extractArchive(ctx context.Context, r io.Reader, workdir string, expected map[string]string) (int, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error())
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error())
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		target, ok := safeJoin(workdir, path.Clean(hdr.Name))
		if !ok {
			return count, zerr.With(domain.ErrCachePathOutsideRoot, "path", hdr.Name)
		}
		if err := restoreFile(tr, target, fs.FileMode(hdr.Mode).Perm()); err != nil {
			return count, zerr.With(zerr.Wrap(err, domain.ErrCacheRestoreFailed.Error()), "path", hdr.Name)
		}

		if want, ok := expected[hdr.Name]; ok {
			got, err := fileHash(target)
			if err != nil {
				return count, err
			}
			if got != want {
				return count, zerr.With(domain.ErrCacheDigestMismatch, "path", hdr.Name)
			}
		}
		count++
	}
}

func restoreFile(r io.Reader, target string, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}
	//nolint:gosec // Target was checked to stay below the workdir
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	//nolint:gosec // Archive sizes are bounded by what this cache wrote
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Remove deletes the archive and manifest for key.
func (s *Store) Remove(_ context.Context, key domain.CacheKey) error {
	if err := key.Validate(); err != nil {
		return zerr.With(err, "classifier", key.Classifier)
	}

	archivePath, manifestPath := s.paths(key)
	for _, p := range []string{archivePath, manifestPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to remove cache entry"), "path", p)
		}
	}
	return nil
}

func logf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}
