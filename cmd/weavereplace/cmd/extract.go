package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var recordPath, schemaPath string

	extractCmd := &cobra.Command{
		Use:     "extract",
		Short:   "Flatten a record into a dotted context",
		Example: `  weavereplace extract --record order.yaml --schema order-schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if recordPath == "" || schemaPath == "" {
				return fmt.Errorf("--record and --schema are required")
			}
			_, logger, p, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, err := readContext(p, "", recordPath, schemaPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ctx)
		},
	}

	extractCmd.Flags().StringVar(&recordPath, "record", "", "record file (YAML or JSON, - for stdin)")
	extractCmd.Flags().StringVar(&schemaPath, "schema", "", "column descriptor file (YAML or JSON)")
	return extractCmd
}
