package domain

import (
	"path/filepath"
	"regexp"
)

// CacheKey addresses one archive in the artifact cache.
type CacheKey struct {
	Repo       Repo
	SHA        string
	Classifier string
}

// Validate checks that every path component is present and safe.
func (k CacheKey) Validate() error {
	for _, part := range []string{k.Repo.Owner, k.Repo.Name, k.SHA, k.Classifier} {
		if part == "" || !cacheSegmentRegex.MatchString(part) {
			return ErrInvalidCacheKey
		}
	}
	if k.Repo.ProviderID != "" && !cacheSegmentRegex.MatchString(k.Repo.ProviderID) {
		return ErrInvalidCacheKey
	}
	return nil
}

// Dir returns the relative directory holding this key's archives.
func (k CacheKey) Dir() string {
	provider := k.Repo.ProviderID
	if provider == "" {
		provider = DefaultProviderID
	}
	return filepath.Join(provider, k.Repo.Owner, k.Repo.Name, k.SHA)
}

var cacheSegmentRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// CacheEntry selects files to capture under a classifier.
type CacheEntry struct {
	Classifier string   `yaml:"classifier" toml:"classifier"`
	Patterns   []string `yaml:"patterns" toml:"patterns"`
}

// CacheOptions configures the artifact cache for an implementation.
type CacheOptions struct {
	// Entries are captured after a successful execution.
	Entries []CacheEntry `yaml:"entries" toml:"entries"`
	// Restore lists classifiers to restore before execution.
	Restore []string `yaml:"restore" toml:"restore"`
	// OnMiss is run once per missing classifier instead of restoring it.
	OnMiss []string `yaml:"onMiss" toml:"onMiss"`
	// Branches restricts capture and restore to these branches. Empty allows every branch.
	Branches []string `yaml:"branches" toml:"branches"`
}
