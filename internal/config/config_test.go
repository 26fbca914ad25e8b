package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("NASA_API_KEY", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.nasa.gov", cfg.Nasa.BaseURL)
	assert.Equal(t, "2024-01-01", cfg.Ingest.Epoch)
	assert.Equal(t, 7, cfg.Ingest.WindowDays)
	assert.Equal(t, 25, cfg.Ingest.MaxNewPerRun)
	assert.Equal(t, 25, cfg.Ingest.PerDayItemLimit)
	assert.Equal(t, DiameterFieldMax, cfg.Ingest.SummaryDiameterField)
	assert.InDelta(t, 0.15, cfg.Resolve.Threshold, 1e-9)
	assert.Equal(t, 3, cfg.Resolve.TopK)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_YAMLAndEnvOverride(t *testing.T) {
	dir := writeYAML(t, `
nasa:
  api_key: yaml-key
  timeout: 5
ingest:
  max_new_per_run: 10
resolve:
  threshold: 0.3
  top_k: 1
database:
  driver: sqlite
  dsn: from-yaml.db
`)
	t.Setenv("NASA_API_KEY", "env-key")
	t.Setenv("DATABASE_DSN", "from-env.db")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Nasa.APIKey)
	assert.Equal(t, "from-env.db", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Nasa.Timeout)
	assert.Equal(t, 10, cfg.Ingest.MaxNewPerRun)
	assert.Equal(t, 1, cfg.Resolve.TopK)
	assert.InDelta(t, 0.3, cfg.Resolve.Threshold, 1e-9)
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("inline key", func(t *testing.T) {
		cfg := &Config{Nasa: NasaConfig{APIKey: "  abc  "}}
		require.NoError(t, cfg.ResolveAPIKey())
		assert.Equal(t, "abc", cfg.Nasa.APIKey)
	})

	t.Run("key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.txt")
		require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))
		cfg := &Config{Nasa: NasaConfig{APIKeyFile: path}}
		require.NoError(t, cfg.ResolveAPIKey())
		assert.Equal(t, "file-key", cfg.Nasa.APIKey)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &Config{Nasa: NasaConfig{APIKeyFile: filepath.Join(t.TempDir(), "nope.txt")}}
		assert.ErrorIs(t, cfg.ResolveAPIKey(), ErrAPIKeyNotFound)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key.txt")
		require.NoError(t, os.WriteFile(path, []byte("   \n"), 0o600))
		cfg := &Config{Nasa: NasaConfig{APIKeyFile: path}}
		assert.ErrorIs(t, cfg.ResolveAPIKey(), ErrAPIKeyNotFound)
	})

	t.Run("nothing configured", func(t *testing.T) {
		cfg := &Config{}
		assert.ErrorIs(t, cfg.ResolveAPIKey(), ErrAPIKeyNotFound)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Ingest: IngestConfig{
				Epoch:                "2024-01-01",
				WindowDays:           7,
				MaxNewPerRun:         25,
				PerDayItemLimit:      25,
				SummaryDiameterField: DiameterFieldMax,
			},
			Resolve: ResolveConfig{Threshold: 0.15, TopK: 3},
		}
	}

	require.NoError(t, base().Validate())

	cases := map[string]func(c *Config){
		"threshold one":  func(c *Config) { c.Resolve.Threshold = 1 },
		"threshold neg":  func(c *Config) { c.Resolve.Threshold = -0.1 },
		"top_k zero":     func(c *Config) { c.Resolve.TopK = 0 },
		"budget neg":     func(c *Config) { c.Ingest.MaxNewPerRun = -1 },
		"window zero":    func(c *Config) { c.Ingest.WindowDays = 0 },
		"bad field":      func(c *Config) { c.Ingest.SummaryDiameterField = "diameter" },
		"bad epoch":      func(c *Config) { c.Ingest.Epoch = "01/01/2024" },
		"unknown driver": func(c *Config) { c.Database.Driver = "mysql" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
