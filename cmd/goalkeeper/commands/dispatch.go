package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func (c *CLI) newDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <goal-set-id> <unique-name>",
		Short: "Dispatch a single goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Dispatch(cmd.Context(), args[0], args[1])
			printResult(cmd, res)
			return err
		},
	}
}

func (c *CLI) newExecuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "execute",
		Short:  "Execute the goal assigned to this isolated job (internal use)",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.ExecuteIsolated(cmd.Context())
			printResult(cmd, res)
			return err
		},
	}
}

func printResult(cmd *cobra.Command, res domain.ExecutionResult) {
	if res.Message == "" {
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Message)
}
