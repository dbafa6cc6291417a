package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/solatis/weavereplace/internal/core/config"
	"github.com/solatis/weavereplace/internal/core/logging"
	"github.com/solatis/weavereplace/internal/extract"
	"github.com/solatis/weavereplace/internal/types"
	"github.com/solatis/weavereplace/internal/values"
	"github.com/solatis/weavereplace/internal/weave"
)

// Version is the release reported by the root command.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weavereplace",
		Short:         "Template resolution and rule matching over structured records",
		Long:          `weavereplace flattens records into dotted contexts, renders {{variable}} and @@function()@@ templates against them, and matches condition lists with wildcard paths.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newExtractCmd(),
		newRenderCmd(),
		newMatchCmd(),
		newColumnsCmd(),
		newFunctionsCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// setup loads configuration and builds the logger and processor shared by
// the offline commands.
func setup() (*config.Config, *zap.Logger, *weave.Processor, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	p, err := weave.New(
		weave.WithDelimiters(cfg.Placeholders),
		weave.WithMaxPasses(cfg.Template.MaxPasses),
		weave.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create processor: %w", err)
	}
	return cfg, logger, p, nil
}

// readInput decodes a YAML or JSON file into out. "-" reads stdin.
func readInput(path string, out any) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readColumns reads a list of column descriptors.
func readColumns(path string) ([]types.ColumnDescriptor, error) {
	var columns []types.ColumnDescriptor
	if err := readInput(path, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

// readValue reads any YAML or JSON document as plain values.
func readValue(path string) (any, error) {
	var v any
	if err := readInput(path, &v); err != nil {
		return nil, err
	}
	return values.Normalize(v), nil
}

// readRecord reads a single record document.
func readRecord(path string) (extract.MapRecord, error) {
	var rec map[string]any
	if err := readInput(path, &rec); err != nil {
		return nil, err
	}
	return extract.MapRecord(rec), nil
}

// readContext builds a context either from a flat context file or from a
// record file plus its schema.
func readContext(p *weave.Processor, contextPath, recordPath, schemaPath string) (types.Context, error) {
	switch {
	case contextPath != "" && recordPath != "":
		return nil, fmt.Errorf("--context and --record are mutually exclusive")
	case contextPath != "":
		v, err := readValue(contextPath)
		if err != nil {
			return nil, err
		}
		return p.Context(v, nil), nil
	case recordPath != "":
		if schemaPath == "" {
			return nil, fmt.Errorf("--schema is required with --record")
		}
		columns, err := readColumns(schemaPath)
		if err != nil {
			return nil, err
		}
		rec, err := readRecord(recordPath)
		if err != nil {
			return nil, err
		}
		return p.ExtractContext(rec, columns), nil
	}
	return types.Context{}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
