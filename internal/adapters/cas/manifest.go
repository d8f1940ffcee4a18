package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// Manifest describes one cached archive.
type Manifest struct {
	Classifier string         `json:"classifier"`
	SHA        string         `json:"sha"`
	Digest     string         `json:"digest"`
	Size       int64          `json:"size"`
	CreatedAt  time.Time      `json:"createdAt"`
	Files      []ManifestFile `json:"files"`
}

// ManifestFile records one archived file.
type ManifestFile struct {
	Path string      `json:"path"`
	Mode fs.FileMode `json:"mode"`
	Size int64       `json:"size"`
	Hash string      `json:"hash"`
}

func readManifest(path string) (*Manifest, error) {
	//nolint:gosec // Path is derived from a validated cache key
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal cache manifest")
	}
	return &m, nil
}

func writeManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache manifest")
	}
	//nolint:gosec // Path is derived from a validated cache key
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write cache manifest")
	}
	return nil
}
