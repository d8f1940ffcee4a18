package domain

import "io"

// Implementation is a registered way of executing a managed goal.
type Implementation struct {
	Name        string            `yaml:"name" toml:"name"`
	Command     []string          `yaml:"command" toml:"command"`
	Environment map[string]string `yaml:"environment" toml:"environment"`
	// Isolated requests execution in a dedicated cluster job when isolation is enabled.
	Isolated bool         `yaml:"isolated" toml:"isolated"`
	Cache    CacheOptions `yaml:"cache" toml:"cache"`
}

// Command is a process to run on behalf of a goal.
type Command struct {
	Name        string
	Args        []string
	Dir         string
	Environment map[string]string
}

// Invocation carries everything one dispatch needs to execute a goal.
type Invocation struct {
	Goal           Goal
	Implementation Implementation
	CorrelationID  string
	Workdir        string
	// Progress receives human-readable execution output.
	Progress io.Writer
	// Credentials are passed to the executed command as environment variables.
	Credentials map[string]string
}
