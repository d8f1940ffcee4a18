// Package commands implements the CLI commands for goalkeeper.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/goalkeeper/internal/build"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

// CLI represents the command line interface for goalkeeper.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Serve(ctx context.Context) error
	Dispatch(ctx context.Context, goalSetID, uniqueName string) (domain.ExecutionResult, error)
	ExecuteIsolated(ctx context.Context) (domain.ExecutionResult, error)
	Submit(ctx context.Context, path string) (domain.GoalSet, error)
	List(ctx context.Context, q domain.GoalQuery) ([]domain.Goal, error)
	Watch(ctx context.Context, goalSetID string) error
	Cancel(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error)
	Retry(ctx context.Context, goalSetID, uniqueName string) (domain.Goal, error)
	Sweep(ctx context.Context) (int, error)
	GenerateKeys(dir string, bits int) (string, string, error)
	RemoveCache(ctx context.Context, key domain.CacheKey) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "goalkeeper",
		Short:         "Dispatches delivery goals to their implementations",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newDispatchCmd())
	rootCmd.AddCommand(c.newExecuteCmd())
	rootCmd.AddCommand(c.newGoalsCmd())
	rootCmd.AddCommand(c.newSweepCmd())
	rootCmd.AddCommand(c.newKeysCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
