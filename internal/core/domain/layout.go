package domain

import (
	"path/filepath"
	"time"
)

const (
	// GoalkeeperDirName is the name of the internal working directory.
	GoalkeeperDirName = ".goalkeeper"

	// CacheDirName is the name of the artifact cache directory.
	CacheDirName = "cache"

	// LogsDirName is the name of the progress log directory.
	LogsDirName = "logs"

	// StoreFileName is the name of the SQLite goal store file.
	StoreFileName = "goals.db"

	// ConfigFileName is the default configuration file.
	ConfigFileName = "goalkeeper.yaml"

	// PrivateKeyFileName is the file name used for generated private keys.
	PrivateKeyFileName = "goalkeeper.key"

	// PublicKeyFileName is the file name used for generated public keys.
	PublicKeyFileName = "goalkeeper.pub"

	// DefaultProviderID is used for cache paths when a repository has no provider.
	DefaultProviderID = "default"

	// DefaultRegistration is the registration name used when none is configured.
	DefaultRegistration = "goalkeeper"

	// DefaultCleanupInterval is the default period between job sweeps.
	DefaultCleanupInterval = 2 * time.Hour

	// DefaultPollInterval is the default period between store polls in serve mode.
	DefaultPollInterval = 2 * time.Second

	// DefaultCachePath is the default mount path of the shared cache volume in jobs.
	DefaultCachePath = "/opt/data"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultGoalkeeperPath returns the default root directory for goalkeeper state.
func DefaultGoalkeeperPath() string {
	return GoalkeeperDirName
}

// DefaultCacheRoot returns the default artifact cache root.
// It joins .goalkeeper and cache.
func DefaultCacheRoot() string {
	return filepath.Join(GoalkeeperDirName, CacheDirName)
}

// DefaultLogsPath returns the default progress log directory.
// It joins .goalkeeper and logs.
func DefaultLogsPath() string {
	return filepath.Join(GoalkeeperDirName, LogsDirName)
}

// DefaultStorePath returns the default SQLite goal store path.
// It joins .goalkeeper and goals.db.
func DefaultStorePath() string {
	return filepath.Join(GoalkeeperDirName, StoreFileName)
}
