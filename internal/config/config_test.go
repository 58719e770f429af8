package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dephub/dephub-align/align"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.StaticSuffix)
	assert.Equal(t, "", cfg.IncrementalSuffix)
	assert.True(t, cfg.OSGiCompatible)
	assert.False(t, cfg.PreserveSnapshot)
	assert.Zero(t, cfg.BuildNumberPaddingWidth)
	assert.Empty(t, cfg.AlternateSuffixBases)
	assert.Equal(t, 4, cfg.LookupConcurrency)
	assert.Equal(t, SourceNone, cfg.Repository.Type)
	assert.Equal(t, "maven-metadata", cfg.Repository.Layout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{"incrementalSuffix", "ALIGN_INCREMENTALSUFFIX", "redhat", func(c Config) any { return c.IncrementalSuffix }, "redhat"},
		{"preserveSnapshot", "ALIGN_PRESERVESNAPSHOT", "true", func(c Config) any { return c.PreserveSnapshot }, true},
		{"buildNumberPaddingWidth", "ALIGN_BUILDNUMBERPADDINGWIDTH", "5", func(c Config) any { return c.BuildNumberPaddingWidth }, 5},
		{"repository.rateLimit", "ALIGN_REPOSITORY_RATELIMIT", "2.5", func(c Config) any { return c.Repository.RateLimit }, 2.5},
		{"log.format", "ALIGN_LOG_FORMAT", "json", func(c Config) any { return c.Log.Format }, "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so ALIGN_* env vars map to config keys.
			viper.SetEnvPrefix(EnvPrefix)
			viper.SetEnvKeyReplacer(EnvKeyReplacer)
			viper.AutomaticEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.field(cfg))
		})
	}
}

func TestLoad_File(t *testing.T) {
	resetViper()

	path := filepath.Join(t.TempDir(), "align.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
incrementalSuffix: redhat
alternateSuffixBases:
  - temporary-redhat
osgiCompatible: false
repository:
  type: http
  url: https://repo.example.com/maven2
  layout: versions-list
`), 0o600))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"temporary-redhat"}, cfg.AlternateSuffixBases)
	assert.False(t, cfg.OSGiCompatible)
	assert.Equal(t, SourceHTTP, cfg.Repository.Type)
	assert.Equal(t, "versions-list", cfg.Repository.Layout)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, align.ModeIncremental, p.Mode())
	assert.False(t, p.OSGiCompatible())
	assert.Len(t, p.Variants(), 2)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			IncrementalSuffix: "redhat",
			OSGiCompatible:    true,
			LookupConcurrency: 4,
			Repository:        RepositoryConfig{Type: SourceNone, Layout: "maven-metadata"},
			Log:               LogConfig{Level: "info", Format: "text"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"both suffixes", func(c *Config) { c.StaticSuffix = "foo" }},
		{"negative padding", func(c *Config) { c.BuildNumberPaddingWidth = -1 }},
		{"empty alternate", func(c *Config) { c.AlternateSuffixBases = []string{""} }},
		{"no concurrency", func(c *Config) { c.LookupConcurrency = 0 }},
		{"unknown source", func(c *Config) { c.Repository.Type = "ftp" }},
		{"http without url", func(c *Config) { c.Repository.Type = SourceHTTP }},
		{"github without address", func(c *Config) { c.Repository.Type = SourceGitHub }},
		{"bad url", func(c *Config) { c.Repository.URL = "not a url" }},
		{"unknown layout", func(c *Config) { c.Repository.Layout = "ivy" }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			var ce *align.ConfigurationError
			assert.ErrorAs(t, cfg.Validate(), &ce)
		})
	}
}

func TestPolicy_Errors(t *testing.T) {
	_, err := Config{IncrementalSuffix: "redhat-1"}.Policy()
	var ce *align.ConfigurationError
	assert.ErrorAs(t, err, &ce)

	p, err := Config{}.Policy()
	require.NoError(t, err)
	assert.Equal(t, align.ModeNone, p.Mode())
}
