package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/weavereplace/internal/rules"
	"github.com/solatis/weavereplace/internal/types"
)

type explanation struct {
	Matched bool              `json:"matched"`
	Matches []rules.PathMatch `json:"matches"`
}

func newMatchCmd() *cobra.Command {
	var (
		rulesPath   string
		contextPath string
		recordPath  string
		schemaPath  string
		explain     bool
	)

	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Evaluate a condition list against a context or record",
		Example: `  weavereplace match --rules vip.yaml --context ctx.yaml
  weavereplace match --rules vip.yaml --record user.yaml --schema user-schema.yaml --explain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesPath == "" {
				return fmt.Errorf("--rules is required")
			}
			_, logger, p, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			raw, err := readValue(rulesPath)
			if err != nil {
				return err
			}
			set := types.RuleSetFromAny(raw)

			ctx, err := readContext(p, contextPath, recordPath, schemaPath)
			if err != nil {
				return err
			}

			matched := p.Match(set, ctx, nil)
			if !explain {
				fmt.Fprintln(cmd.OutOrStdout(), matched)
				return nil
			}

			matches := p.MatchPaths(set, ctx, nil)
			if matches == nil {
				matches = []rules.PathMatch{}
			}
			return writeJSON(cmd.OutOrStdout(), explanation{Matched: matched, Matches: matches})
		},
	}

	matchCmd.Flags().StringVar(&rulesPath, "rules", "", "condition list file (YAML or JSON)")
	matchCmd.Flags().StringVar(&contextPath, "context", "", "context file (YAML or JSON, - for stdin)")
	matchCmd.Flags().StringVar(&recordPath, "record", "", "record file, flattened with --schema")
	matchCmd.Flags().StringVar(&schemaPath, "schema", "", "column descriptor file")
	matchCmd.Flags().BoolVar(&explain, "explain", false, "print the paths that satisfied each condition")
	return matchCmd
}
