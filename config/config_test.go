package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
theme = "dracula"
page_size = 50
columns = 6

[sources]
gifs = "giphy"

[giphy]
api_key = "from-file"

[commons]
base_url = "http://commons.local"

[fetch]
timeout = "3s"
requests_per_second = 0.5
`)
	t.Setenv("WEBSEARCH_GIPHY_API_KEY", "from-env")
	t.Setenv("WEBSEARCH_FETCH_MAX_ATTEMPTS", "7")
	t.Setenv("WEBSEARCH_COLUMNS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 5, cfg.Columns)
	assert.Equal(t, "bing", cfg.Sources.Images)
	assert.Equal(t, "giphy", cfg.Sources.GIFs)
	assert.Equal(t, "from-env", cfg.Giphy.APIKey)
	assert.Equal(t, "g", cfg.Giphy.Rating)
	assert.Equal(t, "http://commons.local", cfg.Commons.BaseURL)
	assert.Equal(t, 3*time.Second, time.Duration(cfg.Fetch.Timeout))
	assert.Equal(t, 0.5, cfg.Fetch.RequestsPerSecond)
	assert.Equal(t, 7, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 64, cfg.Fetch.CacheSize)
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("WEBSEARCH_FETCH_TIMEOUT", "250ms")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Fetch.Timeout))
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, "page_size = 0\n"))
	assert.ErrorContains(t, err, "page_size")

	_, err = Load(writeConfig(t, "theme = [\n"))
	assert.ErrorContains(t, err, "parsing")

	_, err = Load(writeConfig(t, "[fetch]\ntimeout = \"soon\"\n"))
	assert.Error(t, err)
}
