package config

import (
	"strconv"
	"strings"
	"time"

	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/zerr"
)

// applyEnv overlays GOALKEEPER_* and pod identity variables on cfg.
// Set variables always win over the file.
func applyEnv(cfg *domain.Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str(domain.EnvRegistration, &cfg.Registration)
	str(domain.EnvWorkspaceID, &cfg.WorkspaceID)
	str(domain.EnvPodName, &cfg.Isolation.PodName)
	str(domain.EnvPodNamespace, &cfg.Isolation.PodNamespace)
	str(domain.EnvCachePath, &cfg.Isolation.CachePath)
	str(domain.EnvStorePath, &cfg.Store.Path)
	str(domain.EnvRedisAddr, &cfg.Redis.Addr)
	str(domain.EnvRedisPassword, &cfg.Redis.Password)
	str(domain.EnvPrivateKey, &cfg.Signing.PrivateKey)

	if v := strings.TrimSpace(getenv(domain.EnvIsolation)); v != "" {
		cfg.Isolation.Mode = domain.IsolationMode(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(domain.EnvStoreDriver)); v != "" {
		cfg.Store.Driver = domain.StoreDriver(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(domain.EnvProgressSink)); v != "" {
		cfg.ProgressLog.Sink = domain.ProgressSink(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(domain.EnvTrustedKeys)); v != "" {
		cfg.Signing.TrustedKeys = splitList(v)
	}

	if v := strings.TrimSpace(getenv(domain.EnvCleanupInterval)); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid cleanup interval"), "value", v)
		}
		cfg.Isolation.CleanupInterval = d
	}

	for key, dst := range map[string]*bool{
		domain.EnvLeader:            &cfg.Isolation.Leader,
		domain.EnvLogJSON:           &cfg.LogJSON,
		domain.EnvIsolatedExecution: &cfg.Isolation.Isolated,
	} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "invalid boolean"), "variable", key)
			}
			*dst = b
		}
	}

	return nil
}

// parseInterval accepts a Go duration or a bare number of milliseconds.
func parseInterval(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
