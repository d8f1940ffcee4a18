package domain

import "go.trai.ch/zerr"

var (
	// ErrGoalNotFound is returned when no goal exists for the requested key.
	ErrGoalNotFound = zerr.New("goal not found")

	// ErrGoalExists is returned when creating a goal whose key is already taken.
	ErrGoalExists = zerr.New("goal already exists")

	// ErrStaleGoalVersion is returned when a mutation is based on a version that is no longer the latest.
	ErrStaleGoalVersion = zerr.New("stale goal version")

	// ErrInvalidTransition is returned when a state change is not allowed by the goal state machine.
	ErrInvalidTransition = zerr.New("invalid goal state transition")

	// ErrNotRerequestable is returned when a goal cannot be requested again.
	ErrNotRerequestable = zerr.New("goal cannot be requested again")

	// ErrMissingGoalKey is returned when a goal lacks a goal set id or unique name.
	ErrMissingGoalKey = zerr.New("goal set id and unique name are required")

	// ErrSignatureMissing is returned when a goal carries no signature but verification is required.
	ErrSignatureMissing = zerr.New("goal signature missing")

	// ErrSignatureInvalid is returned when no trusted key verifies a goal signature.
	ErrSignatureInvalid = zerr.New("goal signature invalid")

	// ErrNoTrustedKeys is returned when verification is required but no public keys are configured.
	ErrNoTrustedKeys = zerr.New("no trusted verification keys configured")

	// ErrKeyDecodeFailed is returned when a PEM key cannot be decoded.
	ErrKeyDecodeFailed = zerr.New("failed to decode key")

	// ErrUnsupportedKey is returned when a key is not an RSA key.
	ErrUnsupportedKey = zerr.New("unsupported key type, expected RSA")

	// ErrCanonicalEncodingFailed is returned when a goal cannot be encoded to canonical bytes.
	ErrCanonicalEncodingFailed = zerr.New("failed to encode goal canonically")

	// ErrImplementationNotFound is returned when no implementation is registered for a goal.
	ErrImplementationNotFound = zerr.New("implementation not found")

	// ErrParentPodUnavailable is returned when the scheduler cannot read its own pod.
	ErrParentPodUnavailable = zerr.New("failed to read parent pod")

	// ErrParentContainerNotFound is returned when the parent pod has no containers.
	ErrParentContainerNotFound = zerr.New("parent pod has no containers")

	// ErrJobCreateFailed is returned when a job cannot be created in the cluster.
	ErrJobCreateFailed = zerr.New("failed to create job")

	// ErrJobDeleteFailed is returned when an existing job cannot be removed.
	ErrJobDeleteFailed = zerr.New("failed to delete job")

	// ErrMissingIsolatedIdentity is returned when an isolated child lacks its goal identity variables.
	ErrMissingIsolatedIdentity = zerr.New("isolated execution requires goal set id and unique name")

	// ErrCacheArchiveFailed is returned when the artifact archive cannot be written.
	ErrCacheArchiveFailed = zerr.New("failed to write cache archive")

	// ErrCacheRestoreFailed is returned when the artifact archive cannot be extracted.
	ErrCacheRestoreFailed = zerr.New("failed to restore cache archive")

	// ErrCacheDigestMismatch is returned when an archive does not match its recorded digest.
	ErrCacheDigestMismatch = zerr.New("cache archive digest mismatch")

	// ErrCachePathOutsideRoot is returned when an archive entry escapes the target directory.
	ErrCachePathOutsideRoot = zerr.New("cache entry path is outside target directory")

	// ErrInvalidCacheKey is returned when a cache key lacks required components.
	ErrInvalidCacheKey = zerr.New("invalid cache key")

	// ErrProgressLogClosed is returned when writing to a closed progress log.
	ErrProgressLogClosed = zerr.New("progress log is closed")

	// ErrProgressLogFlushFailed is returned when buffered progress cannot be delivered.
	ErrProgressLogFlushFailed = zerr.New("failed to flush progress log")

	// ErrProgressLogOverflow is reported when output is dropped because the sink keeps failing.
	ErrProgressLogOverflow = zerr.New("progress log output dropped")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidIsolationMode is returned for an unknown isolation mode.
	ErrInvalidIsolationMode = zerr.New("invalid isolation mode, expected 'off', 'isolated' or 'all'")

	// ErrInvalidStoreDriver is returned for an unknown goal store driver.
	ErrInvalidStoreDriver = zerr.New("invalid store driver, expected 'memory' or 'sqlite'")

	// ErrInvalidProgressSink is returned for an unknown progress log sink.
	ErrInvalidProgressSink = zerr.New("invalid progress log sink, expected 'file', 'redis' or 'console'")

	// ErrRedisNotConfigured is returned when a redis-backed component has no address.
	ErrRedisNotConfigured = zerr.New("redis address not configured")

	// ErrExecutionPanicked is returned when an implementation or scheduler panics during dispatch.
	ErrExecutionPanicked = zerr.New("goal execution panicked")

	// ErrScheduleRejected is returned when a scheduler reports a non-zero result without an error.
	ErrScheduleRejected = zerr.New("scheduler rejected goal")

	// ErrEmptyCommand is returned when an implementation has no command to run.
	ErrEmptyCommand = zerr.New("implementation has no command")

	// ErrIsolationDisabled is returned when a cluster operation is requested with isolation off.
	ErrIsolationDisabled = zerr.New("isolation is disabled")

	// ErrEmptyGoalSet is returned when a submitted goal set contains no goals.
	ErrEmptyGoalSet = zerr.New("goal set contains no goals")

	// ErrDispatchFailed is returned by the CLI when a dispatch ends with a non-zero code.
	ErrDispatchFailed = zerr.New("dispatch failed")

	// ErrUnknownGoalState is returned when a state filter names no known state.
	ErrUnknownGoalState = zerr.New("unknown goal state")
)
