package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the registered template functions",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, p, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			for _, name := range p.Registry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
