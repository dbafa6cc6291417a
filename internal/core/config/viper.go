package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/solatis/weavereplace/internal/template"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Bind environment variables with WR_ prefix
	v.SetEnvPrefix("WR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Credentials are environment-only
	if err := validateNoSecretsInConfig(configPath); err != nil {
		return nil, err
	}

	cfg := &Config{
		Placeholders: template.Delimiters{
			Variable: template.Pair{
				Start: v.GetString("placeholders.variable.start"),
				End:   v.GetString("placeholders.variable.end"),
			},
			Function: template.Pair{
				Start: v.GetString("placeholders.function.start"),
				End:   v.GetString("placeholders.function.end"),
			},
		},
		Template: TemplateConfig{
			MaxPasses: v.GetInt("template.max_passes"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxBatchSize:   v.GetInt("server.max_batch_size"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults mirrors DefaultConfig so every key is known to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("placeholders.variable.start", d.Placeholders.Variable.Start)
	v.SetDefault("placeholders.variable.end", d.Placeholders.Variable.End)
	v.SetDefault("placeholders.function.start", d.Placeholders.Function.Start)
	v.SetDefault("placeholders.function.end", d.Placeholders.Function.End)
	v.SetDefault("template.max_passes", d.Template.MaxPasses)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.max_batch_size", d.Server.MaxBatchSize)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("database.url", d.Database.URL)
}

// validateNoSecretsInConfig rejects database passwords written into the
// config file itself. The file is read without environment overrides.
func validateNoSecretsInConfig(configPath string) error {
	if configPath == "" {
		return nil
	}
	fv := viper.New()
	fv.SetConfigFile(configPath)
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if fv.IsSet("database.password") || hasPassword(fv.GetString("database.url")) {
		return fmt.Errorf("database credentials not allowed in config files (use WR_DATABASE_URL environment variable)")
	}
	return nil
}
