package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		tmpl         string
		templatePath string
		contextPath  string
		recordPath   string
		schemaPath   string
		asJSON       bool
	)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve a template against a context or record",
		Example: `  weavereplace render --template 'Hello {{user.name}}' --context ctx.yaml
  weavereplace render --template-file invoice.tmpl --record order.yaml --schema order-schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (tmpl == "") == (templatePath == "") {
				return fmt.Errorf("exactly one of --template or --template-file is required")
			}
			if templatePath != "" {
				data, err := os.ReadFile(templatePath)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", templatePath, err)
				}
				tmpl = string(data)
			}

			_, logger, p, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, err := readContext(p, contextPath, recordPath, schemaPath)
			if err != nil {
				return err
			}

			result := p.Replace(tmpl, ctx)
			if s, ok := result.(string); ok && !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	renderCmd.Flags().StringVar(&tmpl, "template", "", "template text")
	renderCmd.Flags().StringVar(&templatePath, "template-file", "", "file holding the template text")
	renderCmd.Flags().StringVar(&contextPath, "context", "", "context file (YAML or JSON, - for stdin)")
	renderCmd.Flags().StringVar(&recordPath, "record", "", "record file, flattened with --schema")
	renderCmd.Flags().StringVar(&schemaPath, "schema", "", "column descriptor file")
	renderCmd.Flags().BoolVar(&asJSON, "json", false, "always print the result as JSON")
	return renderCmd
}
