// Package config loads tmotif settings from an optional YAML file and
// TMOTIF_* environment variables. Command-line flags are applied on top by
// the CLI.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TMOTIF_DATABASE.
const EnvPrefix = "TMOTIF"

// Config holds the settings shared by the commands.
type Config struct {
	// Database is the SQLite file recording match runs.
	Database string `mapstructure:"database" validate:"required"`

	// MotifsDir is the directory of CUE motif definitions.
	MotifsDir string `mapstructure:"motifs_dir" validate:"required"`

	// Delta is the time window used when neither the flag nor the motif
	// sets one. Same unit as the graph timestamps.
	Delta int64 `mapstructure:"delta" validate:"gte=0"`

	// MaxSteps bounds each search; 0 means no bound.
	MaxSteps int `mapstructure:"max_steps" validate:"gte=0"`

	// Format is the output format, "text" or "json".
	Format string `mapstructure:"format" validate:"oneof=text json"`

	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", "tmotif.db")
	v.SetDefault("motifs_dir", "motifs")
	v.SetDefault("delta", 3600000) // one hour of millisecond timestamps
	v.SetDefault("max_steps", 0)
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the configuration.
//
// With an explicit path the file must exist. Without one, tmotif.yaml is
// looked up in the working directory and silently skipped when absent.
// Environment variables override the file; defaults fill the rest.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tmotif")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their configuration key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required keys and value ranges.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("config: %s is required", fe.Field())
	case "oneof":
		return fmt.Errorf("config: %s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Errorf("config: %s must be non-negative, got %v", fe.Field(), fe.Value())
	default:
		return fmt.Errorf("config: invalid %s: %v", fe.Field(), fe.Value())
	}
}
