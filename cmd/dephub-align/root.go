package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dephub/dephub-align/align"
	"github.com/dephub/dephub-align/internal/config"
	"github.com/dephub/dephub-align/internal/logging"
)

// flagKeys binds persistent flags to configuration keys.
var flagKeys = map[string]string{
	"static-suffix":        "staticSuffix",
	"incremental-suffix":   "incrementalSuffix",
	"preserve-snapshot":    "preserveSnapshot",
	"osgi":                 "osgiCompatible",
	"padding":              "buildNumberPaddingWidth",
	"alternate-suffix":     "alternateSuffixBases",
	"strict-ignore-suffix": "strictAlignmentIgnoreSuffix",
	"concurrency":          "lookupConcurrency",
	"log-level":            "log.level",
	"log-format":           "log.format",
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dephub-align",
		Short:         "Version alignment for multi-project builds",
		Long:          "dephub-align rewrites reactor versions so that one build publishes one suffixed, monotonically increasing build identifier.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .dephub-align.yaml)")
	flags.String("static-suffix", "", "suffix appended verbatim, e.g. redhat-00001")
	flags.String("incremental-suffix", "", "suffix base followed by an incremented serial, e.g. redhat")
	flags.Bool("preserve-snapshot", false, "keep the -SNAPSHOT marker")
	flags.Bool("osgi", true, "normalize versions to the OSGi grammar")
	flags.Int("padding", 0, "serial width, 0 infers it from published versions")
	flags.StringSlice("alternate-suffix", nil, "suffix bases of previous runs accepted as predecessors")
	flags.Bool("strict-ignore-suffix", false, "ignore serials in strict alignment checks")
	flags.Int("concurrency", 4, "concurrent metadata lookups")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")

	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newCalculateCmd(),
		newCheckCmd(),
		newSpellingsCmd(),
		newPropertiesCmd(),
	)
	return rootCmd
}

func initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".dephub-align")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer)
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// settings is what every subcommand needs from the configuration.
type settings struct {
	cfg    config.Config
	policy *align.SuffixPolicy
	logger *slog.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return &settings{cfg: cfg, policy: policy, logger: logger}, nil
}
