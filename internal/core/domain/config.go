package domain

import "time"

// IsolationMode controls when goals run in a dedicated cluster job.
type IsolationMode string

const (
	// IsolationOff runs every goal in-process.
	IsolationOff IsolationMode = "off"
	// IsolationIsolated runs goals whose implementation requests isolation in a job.
	IsolationIsolated IsolationMode = "isolated"
	// IsolationAll runs every managed goal in a job.
	IsolationAll IsolationMode = "all"
)

// IsValid reports whether m is a known mode.
func (m IsolationMode) IsValid() bool {
	switch m {
	case IsolationOff, IsolationIsolated, IsolationAll:
		return true
	default:
		return false
	}
}

// StoreDriver selects the goal store backend.
type StoreDriver string

const (
	// StoreMemory keeps goals in process memory.
	StoreMemory StoreDriver = "memory"
	// StoreSQLite keeps goals in a SQLite database file.
	StoreSQLite StoreDriver = "sqlite"
)

// ProgressSink selects where progress logs are delivered.
type ProgressSink string

const (
	// SinkFile writes progress logs below a directory.
	SinkFile ProgressSink = "file"
	// SinkRedis appends progress logs to redis streams.
	SinkRedis ProgressSink = "redis"
	// SinkConsole forwards progress logs to the process logger.
	SinkConsole ProgressSink = "console"
)

// Config is the complete runtime configuration.
type Config struct {
	// Registration is the name this executor answers to. Goals registered elsewhere are ignored.
	Registration string `yaml:"registration" toml:"registration"`
	// WorkspaceID is the tenant the executor works for.
	WorkspaceID string `yaml:"workspaceId" toml:"workspaceId"`
	// LogJSON switches the process logger to JSON output.
	LogJSON bool `yaml:"logJson" toml:"logJson"`
	// Workdir is the directory implementations run in and the cache restores into.
	Workdir string `yaml:"workdir" toml:"workdir"`

	Store       StoreConfig       `yaml:"store" toml:"store"`
	Redis       RedisConfig       `yaml:"redis" toml:"redis"`
	Signing     SigningConfig     `yaml:"signing" toml:"signing"`
	Isolation   IsolationConfig   `yaml:"isolation" toml:"isolation"`
	Cache       CacheConfig       `yaml:"cache" toml:"cache"`
	ProgressLog ProgressLogConfig `yaml:"progressLog" toml:"progressLog"`
	Serve       ServeConfig       `yaml:"serve" toml:"serve"`
	Policy      PolicyConfig      `yaml:"policy" toml:"policy"`

	Implementations []Implementation `yaml:"implementations" toml:"implementations"`
}

// StoreConfig selects the goal store.
type StoreConfig struct {
	Driver StoreDriver `yaml:"driver" toml:"driver"`
	Path   string      `yaml:"path" toml:"path"`
}

// RedisConfig locates the redis server used for cancellation markers and log streams.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	Prefix   string `yaml:"prefix" toml:"prefix"`
}

// SigningConfig locates signing material.
type SigningConfig struct {
	// PrivateKey is a PEM file used to sign goal mutations. Empty disables signing.
	PrivateKey string `yaml:"privateKey" toml:"privateKey"`
	// TrustedKeys are PEM public keys accepted during verification.
	TrustedKeys []string `yaml:"trustedKeys" toml:"trustedKeys"`
	// Verify enables signature verification outside isolated jobs.
	Verify bool `yaml:"verify" toml:"verify"`
}

// IsolationConfig configures the cluster job scheduler.
type IsolationConfig struct {
	Mode            IsolationMode `yaml:"mode" toml:"mode"`
	PodName         string        `yaml:"podName" toml:"podName"`
	PodNamespace    string        `yaml:"podNamespace" toml:"podNamespace"`
	CleanupInterval time.Duration `yaml:"cleanupInterval" toml:"cleanupInterval"`
	CachePath       string        `yaml:"cachePath" toml:"cachePath"`
	Leader          bool          `yaml:"leader" toml:"leader"`
	// Isolated is true inside a job created by the scheduler.
	Isolated bool `yaml:"-" toml:"-"`
}

// CacheConfig locates the artifact cache.
type CacheConfig struct {
	Root    string `yaml:"root" toml:"root"`
	Enabled bool   `yaml:"enabled" toml:"enabled"`
}

// ProgressLogConfig configures progress log delivery.
type ProgressLogConfig struct {
	Sink          ProgressSink  `yaml:"sink" toml:"sink"`
	Dir           string        `yaml:"dir" toml:"dir"`
	BufferSize    int           `yaml:"bufferSize" toml:"bufferSize"`
	FlushInterval time.Duration `yaml:"flushInterval" toml:"flushInterval"`
	MaxAttempts   int           `yaml:"maxAttempts" toml:"maxAttempts"`
	MaxPending    int           `yaml:"maxPending" toml:"maxPending"`
}

// ServeConfig configures the dispatch loop.
type ServeConfig struct {
	PollInterval time.Duration `yaml:"pollInterval" toml:"pollInterval"`
	Concurrency  int           `yaml:"concurrency" toml:"concurrency"`
}

// PolicyConfig tunes the goal state machine.
type PolicyConfig struct {
	SkippedBlocks bool `yaml:"skippedBlocks" toml:"skippedBlocks"`
}

// DependencyPolicy returns the configured precondition policy.
func (c *Config) DependencyPolicy() DependencyPolicy {
	return DependencyPolicy{SkippedBlocks: c.Policy.SkippedBlocks}
}

// Implementation returns the implementation registered under name.
func (c *Config) Implementation(name string) (Implementation, bool) {
	for _, impl := range c.Implementations {
		if impl.Name == name {
			return impl, true
		}
	}
	return Implementation{}, false
}
