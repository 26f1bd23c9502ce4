// Package config loads pqview settings from defaults, an optional config
// file, PQVIEW_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vegasq/pqview/render"
)

// EnvPrefix is prepended to every environment variable, as in
// PQVIEW_PAGE_SIZE
const EnvPrefix = "PQVIEW"

// Keys, shared with the command line flag names
const (
	KeyRepo        = "repo"
	KeyQuery       = "query"
	KeyOutput      = "output"
	KeyPagination  = "pagination"
	KeyPageSize    = "page-size"
	KeyAnalysis    = "analysis"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeySeqURL      = "seq-url"
	KeyMetricsFile = "metrics-file"
)

// Config holds the settings of one pqview invocation
type Config struct {
	Repositories []string `mapstructure:"repo"`
	Query        string   `mapstructure:"query"`
	Output       string   `mapstructure:"output"`
	Pagination   bool     `mapstructure:"pagination"`
	PageSize     int      `mapstructure:"page-size"`
	Analysis     bool     `mapstructure:"analysis"`
	LogLevel     string   `mapstructure:"log-level"`
	LogFormat    string   `mapstructure:"log-format"`
	SeqURL       string   `mapstructure:"seq-url"`
	MetricsFile  string   `mapstructure:"metrics-file"`
}

// Format returns the parsed output format
func (c Config) Format() (render.Format, error) {
	return render.ParseFormat(c.Output)
}

// Validate checks values that cannot be rejected by type alone
func (c Config) Validate() error {
	if _, err := c.Format(); err != nil {
		return err
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page size must not be negative, got %d", c.PageSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q (supported: text, json)", c.LogFormat)
	}
	return nil
}

// New returns a viper instance with every default set and environment
// lookup enabled
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRepo, []string{})
	v.SetDefault(KeyQuery, "")
	v.SetDefault(KeyOutput, render.FormatRender.String())
	v.SetDefault(KeyPagination, false)
	v.SetDefault(KeyPageSize, render.DefaultPageSize)
	v.SetDefault(KeyAnalysis, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeySeqURL, "")
	v.SetDefault(KeyMetricsFile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags makes every flag in flags that names a key override it
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// Load reads file, when set, and decodes the merged settings
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
