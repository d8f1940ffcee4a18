package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage goal signing keys",
	}

	cmd.AddCommand(c.newKeysGenerateCmd())

	return cmd
}

func (c *CLI) newKeysGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new signing key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			bits, _ := cmd.Flags().GetInt("bits")

			privPath, pubPath, err := c.app.GenerateKeys(dir, bits)
			if err != nil {
				return err
			}
			cmdo := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(cmdo, "Private key: %s\n", privPath)
			_, _ = fmt.Fprintf(cmdo, "Public key:  %s\n", pubPath)
			return nil
		},
	}
	cmd.Flags().StringP("dir", "d", ".", "Directory to write the key pair into")
	cmd.Flags().Int("bits", 0, "RSA key size (default 3072)")
	return cmd
}
