package domain

// Environment variables read by goalkeeper or set on isolated jobs.
const (
	EnvConfig          = "GOALKEEPER_CONFIG"
	EnvRegistration    = "GOALKEEPER_REGISTRATION"
	EnvWorkspaceID     = "GOALKEEPER_WORKSPACE_ID"
	EnvIsolation       = "GOALKEEPER_ISOLATION"
	EnvCleanupInterval = "GOALKEEPER_CLEANUP_INTERVAL"
	EnvLeader          = "GOALKEEPER_LEADER"
	EnvCachePath       = "GOALKEEPER_CACHE_PATH"
	EnvStoreDriver     = "GOALKEEPER_STORE_DRIVER"
	EnvStorePath       = "GOALKEEPER_STORE_PATH"
	EnvRedisAddr       = "GOALKEEPER_REDIS_ADDR"
	EnvRedisPassword   = "GOALKEEPER_REDIS_PASSWORD"
	EnvPrivateKey      = "GOALKEEPER_PRIVATE_KEY"
	EnvTrustedKeys     = "GOALKEEPER_TRUSTED_KEYS"
	EnvProgressSink    = "GOALKEEPER_PROGRESS_SINK"
	EnvLogJSON         = "GOALKEEPER_LOG_JSON"

	EnvPodName      = "POD_NAME"
	EnvPodNamespace = "POD_NAMESPACE"

	EnvIsolatedExecution = "ISOLATED_EXECUTION"
	EnvJobName           = "GOALKEEPER_JOB_NAME"
	EnvGoalSetID         = "GOALKEEPER_GOAL_SET_ID"
	EnvGoalUniqueName    = "GOALKEEPER_GOAL_UNIQUE_NAME"
	EnvCorrelationID     = "GOALKEEPER_CORRELATION_ID"
	EnvCacheClassifier   = "GOALKEEPER_CACHE_CLASSIFIER"
)
