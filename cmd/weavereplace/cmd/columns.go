package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/weavereplace/internal/extract"
)

func newColumnsCmd() *cobra.Command {
	var (
		schemaPath string
		selectable bool
		separator  string
	)

	columnsCmd := &cobra.Command{
		Use:   "columns",
		Short: "List the paths a schema exposes to templates and rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath == "" {
				return fmt.Errorf("--schema is required")
			}
			columns, err := readColumns(schemaPath)
			if err != nil {
				return err
			}

			var options []extract.Option
			if selectable {
				options = extract.SelectOptions(columns)
			} else {
				options = extract.FilterableOptionsSep(columns, separator)
			}
			if options == nil {
				options = []extract.Option{}
			}
			return writeJSON(cmd.OutOrStdout(), options)
		},
	}

	columnsCmd.Flags().StringVar(&schemaPath, "schema", "", "column descriptor file (YAML or JSON)")
	columnsCmd.Flags().BoolVar(&selectable, "select", false, "list selectable columns instead of filterable leaf paths")
	columnsCmd.Flags().StringVar(&separator, "separator", extract.LabelSeparator, "label separator for filterable paths")
	return columnsCmd
}
