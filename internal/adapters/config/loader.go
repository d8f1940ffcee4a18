// Package config provides the configuration loader for goalkeeper.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML and TOML files.
type Loader struct {
	// Getenv resolves environment overrides. It defaults to os.Getenv.
	Getenv func(string) string
}

var _ ports.ConfigLoader = (*Loader)(nil)

// NewLoader creates a new Loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{Getenv: os.Getenv}
}

// PathFromEnv returns the config path named by GOALKEEPER_CONFIG, or the default file.
func PathFromEnv(getenv func(string) string) string {
	if p := strings.TrimSpace(getenv(domain.EnvConfig)); p != "" {
		return p
	}
	return domain.ConfigFileName
}

// Load reads the configuration file at path. The format is chosen by extension:
// .toml is decoded as TOML, everything else as YAML. A missing file yields the
// defaults, so an executor can be configured through the environment alone.
func (l *Loader) Load(path string) (*domain.Config, error) {
	cfg := &domain.Config{}

	if path != "" {
		//nolint:gosec // path is operator-provided configuration
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
			}
		}
	}

	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeFile reads path into v using the same format rules as Load.
func DecodeFile(path string, v any) error {
	//nolint:gosec // path is operator-provided input
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read file"), "path", path)
	}
	if err := decode(path, data, v); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse file"), "path", path)
	}
	return nil
}

func decode(path string, data []byte, v any) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err := toml.Decode(string(data), v)
		return err
	}
	return yaml.Unmarshal(data, v)
}

func applyDefaults(cfg *domain.Config) {
	if cfg.Registration == "" {
		cfg.Registration = domain.DefaultRegistration
	}
	if cfg.Workdir == "" {
		cfg.Workdir = "."
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = domain.StoreMemory
	}
	if cfg.Store.Driver == domain.StoreSQLite && cfg.Store.Path == "" {
		cfg.Store.Path = domain.DefaultStorePath()
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "goalkeeper:"
	}
	if cfg.Isolation.Mode == "" {
		cfg.Isolation.Mode = domain.IsolationOff
	}
	if cfg.Isolation.CleanupInterval <= 0 {
		cfg.Isolation.CleanupInterval = domain.DefaultCleanupInterval
	}
	if cfg.Isolation.CachePath == "" {
		cfg.Isolation.CachePath = domain.DefaultCachePath
	}
	if cfg.Cache.Root == "" {
		cfg.Cache.Root = domain.DefaultCacheRoot()
	}
	if cfg.ProgressLog.Sink == "" {
		cfg.ProgressLog.Sink = domain.SinkFile
	}
	if cfg.ProgressLog.Dir == "" {
		cfg.ProgressLog.Dir = domain.DefaultLogsPath()
	}
	if cfg.ProgressLog.MaxAttempts <= 0 {
		cfg.ProgressLog.MaxAttempts = 3
	}
	if cfg.Serve.PollInterval <= 0 {
		cfg.Serve.PollInterval = domain.DefaultPollInterval
	}
	if cfg.Serve.Concurrency <= 0 {
		cfg.Serve.Concurrency = 4
	}
}

func validate(cfg *domain.Config) error {
	if !cfg.Isolation.Mode.IsValid() {
		return zerr.With(domain.ErrInvalidIsolationMode, "mode", string(cfg.Isolation.Mode))
	}
	switch cfg.Store.Driver {
	case domain.StoreMemory, domain.StoreSQLite:
	default:
		return zerr.With(domain.ErrInvalidStoreDriver, "driver", string(cfg.Store.Driver))
	}
	switch cfg.ProgressLog.Sink {
	case domain.SinkFile, domain.SinkConsole:
	case domain.SinkRedis:
		if cfg.Redis.Addr == "" {
			return zerr.With(domain.ErrRedisNotConfigured, "component", "progress log")
		}
	default:
		return zerr.With(domain.ErrInvalidProgressSink, "sink", string(cfg.ProgressLog.Sink))
	}
	return nil
}
