// Package config loads the alignment settings from configuration files,
// ALIGN_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/dephub/dephub-align/align"
)

// Metadata source types.
const (
	SourceNone   = "none"
	SourceHTTP   = "http"
	SourceGitHub = "github"
	SourceSearch = "search"
	SourceLookup = "lookup"
)

// RepositoryConfig selects where published versions are looked up.
type RepositoryConfig struct {
	Type      string  `mapstructure:"type" validate:"oneof=none http github search lookup"`
	URL       string  `mapstructure:"url" validate:"required_if=Type http,required_if=Type lookup,eq=|url"`
	Layout    string  `mapstructure:"layout" validate:"oneof=maven-metadata versions-list"`
	Git       string  `mapstructure:"git" validate:"required_if=Type github"`
	Ref       string  `mapstructure:"ref"`
	Root      string  `mapstructure:"root"`
	RateLimit float64 `mapstructure:"rateLimit" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Config holds all runtime configuration of an alignment run.
// Values are populated from .dephub-align.yaml, ALIGN_* env vars, and CLI flags.
type Config struct {
	StaticSuffix                string           `mapstructure:"staticSuffix" validate:"excluded_with=IncrementalSuffix"`
	IncrementalSuffix           string           `mapstructure:"incrementalSuffix"`
	PreserveSnapshot            bool             `mapstructure:"preserveSnapshot"`
	OSGiCompatible              bool             `mapstructure:"osgiCompatible"`
	BuildNumberPaddingWidth     int              `mapstructure:"buildNumberPaddingWidth" validate:"gte=0"`
	AlternateSuffixBases        []string         `mapstructure:"alternateSuffixBases" validate:"dive,required"`
	StrictAlignmentIgnoreSuffix bool             `mapstructure:"strictAlignmentIgnoreSuffix"`
	LookupConcurrency           int              `mapstructure:"lookupConcurrency" validate:"gte=1,lte=64"`
	Repository                  RepositoryConfig `mapstructure:"repository"`
	Log                         LogConfig        `mapstructure:"log"`
}

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "ALIGN"

// EnvKeyReplacer maps nested keys to environment names, e.g. 'log.level' to ALIGN_LOG_LEVEL.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// configValidate is the validator instance for Config.
var configValidate = validator.New()

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	viper.SetDefault("staticSuffix", "")
	viper.SetDefault("incrementalSuffix", "")
	viper.SetDefault("preserveSnapshot", false)
	viper.SetDefault("osgiCompatible", true)
	viper.SetDefault("buildNumberPaddingWidth", 0)
	viper.SetDefault("alternateSuffixBases", []string{})
	viper.SetDefault("strictAlignmentIgnoreSuffix", false)
	viper.SetDefault("lookupConcurrency", 4)
	viper.SetDefault("repository.type", SourceNone)
	viper.SetDefault("repository.url", "")
	viper.SetDefault("repository.layout", string(align.LayoutMavenMetadata))
	viper.SetDefault("repository.git", "")
	viper.SetDefault("repository.ref", "")
	viper.SetDefault("repository.root", "")
	viper.SetDefault("repository.rateLimit", 0.0)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &align.ConfigurationError{Option: verrs[0].Namespace(), Err: err}
	}
	return err
}

// Policy builds the suffix policy described by the configuration.
func (c Config) Policy() (*align.SuffixPolicy, error) {
	opts := []align.PolicyOption{
		align.WithPreserveSnapshot(c.PreserveSnapshot),
		align.WithOSGiCompatible(c.OSGiCompatible),
		align.WithPaddingWidth(c.BuildNumberPaddingWidth),
		align.WithStrictIgnoreSuffix(c.StrictAlignmentIgnoreSuffix),
	}
	if c.StaticSuffix != "" {
		opts = append(opts, align.WithStaticSuffix(c.StaticSuffix))
	}
	if c.IncrementalSuffix != "" {
		opts = append(opts, align.WithIncrementalSuffix(c.IncrementalSuffix))
	}
	if len(c.AlternateSuffixBases) > 0 {
		opts = append(opts, align.WithAlternateSuffixBases(c.AlternateSuffixBases...))
	}
	return align.NewSuffixPolicy(opts...)
}
