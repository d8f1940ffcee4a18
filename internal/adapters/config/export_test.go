package config

// LoadFromEnv exposes loadFromEnv for testing.
var LoadFromEnv = loadFromEnv
