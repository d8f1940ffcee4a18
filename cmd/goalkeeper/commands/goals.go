package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/ui/output"
	"go.trai.ch/goalkeeper/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect and change goals",
	}

	cmd.AddCommand(c.newGoalsSubmitCmd())
	cmd.AddCommand(c.newGoalsListCmd())
	cmd.AddCommand(c.newGoalsWatchCmd())
	cmd.AddCommand(c.newGoalsCancelCmd())
	cmd.AddCommand(c.newGoalsRetryCmd())

	return cmd
}

func (c *CLI) newGoalsSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <file>",
		Short: "Submit a goal set from a YAML or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := c.app.Submit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Goal set %s\n", set.ID)
			renderGoals(cmd.OutOrStdout(), set.Goals)
			return nil
		},
	}
}

func (c *CLI) newGoalsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [goal-set-id]",
		Short: "List the latest version of goals",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registration, _ := cmd.Flags().GetString("registration")
			states, _ := cmd.Flags().GetStringSlice("state")
			limit, _ := cmd.Flags().GetInt("limit")

			q := domain.GoalQuery{Registration: registration, Limit: limit}
			if len(args) == 1 {
				q.GoalSetID = args[0]
			}
			for _, s := range states {
				state := domain.GoalState(s)
				if !state.IsValid() {
					return zerr.With(domain.ErrUnknownGoalState, "state", s)
				}
				q.States = append(q.States, state)
			}

			goals, err := c.app.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			renderGoals(cmd.OutOrStdout(), goals)
			return nil
		},
	}
	cmd.Flags().StringP("registration", "r", "", "Only list goals of this registration")
	cmd.Flags().StringSliceP("state", "s", nil, "Only list goals in these states")
	cmd.Flags().IntP("limit", "l", 0, "Maximum number of goals to list")
	return cmd
}

func (c *CLI) newGoalsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <goal-set-id>",
		Short: "Follow the goals of a goal set until they finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) newGoalsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <goal-set-id> <unique-name>",
		Short: "Cancel a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.app.Cancel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			renderGoals(cmd.OutOrStdout(), []domain.Goal{g})
			return nil
		},
	}
}

func (c *CLI) newGoalsRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <goal-set-id> <unique-name>",
		Short: "Request a skipped or failed goal again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.app.Retry(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			renderGoals(cmd.OutOrStdout(), []domain.Goal{g})
			return nil
		},
	}
}

// renderGoals writes one aligned line per goal, colored by state.
func renderGoals(w io.Writer, goals []domain.Goal) {
	out := output.New(w)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range goals {
		icon, color := style.ForState(g.State)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\tv%d\t%s\n",
			out.String(icon).Foreground(out.Color(string(color))),
			g.ID(),
			g.State,
			g.Version,
			g.Description,
		)
	}
	_ = tw.Flush()
}
