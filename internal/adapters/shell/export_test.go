package shell

// ResolveEnvironment exports resolveEnvironment for testing.
var ResolveEnvironment = resolveEnvironment

// NewExecutorWithEnviron creates an Executor with a fixed process environment.
func NewExecutorWithEnviron(env []string) *Executor {
	return &Executor{environ: func() []string { return env }}
}
