package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the artifact cache",
	}

	cmd.AddCommand(c.newCacheRemoveCmd())

	return cmd
}

func (c *CLI) newCacheRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <owner> <repo> <sha> <classifier>",
		Short: "Remove one cached archive",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, _ := cmd.Flags().GetString("provider")

			key := domain.CacheKey{
				Repo:       domain.Repo{ProviderID: provider, Owner: args[0], Name: args[1]},
				SHA:        args[2],
				Classifier: args[3],
			}
			if err := key.Validate(); err != nil {
				return err
			}
			return c.app.RemoveCache(cmd.Context(), key)
		},
	}
	cmd.Flags().String("provider", "", "Repository provider id")
	return cmd
}
