package cmd

import (
	"io"
	"testing"

	"charm.land/log/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/websearch/config"
	"github.com/Gaurav-Gosain/websearch/search"
)

func TestParseGeo(t *testing.T) {
	p, err := parseGeo("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = parseGeo("48.8584, 2.2945")
	require.NoError(t, err)
	assert.Equal(t, &search.GeoPoint{Latitude: 48.8584, Longitude: 2.2945}, p)

	for _, bad := range []string{"48.8", "x,1", "91,0", "0,181"} {
		_, err := parseGeo(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseMode(t *testing.T) {
	k, err := parseMode("GIFs")
	require.NoError(t, err)
	assert.Equal(t, search.KindGIFs, k)

	_, err = parseMode("videos")
	assert.Error(t, err)
}

func TestExplicitFlagsOverrideConfig(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--page-size", "12", "--theme", "dracula"}))

	cfg := config.Default()
	cfg.Target = "de-DE"
	f := &flags{PageSize: 12, Theme: "dracula", Columns: 9, Target: "fr-FR"}
	applyFlags(cmd, f, &cfg)

	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Equal(t, "de-DE", cfg.Target, "unset flags leave config alone")
	assert.Equal(t, config.Default().Columns, cfg.Columns)
}

func TestBuildRegistryRegistersEveryProvider(t *testing.T) {
	reg, err := buildRegistry(config.Default(), log.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, []string{"bing", "commons", "giphy"}, reg.Sources())

	cfg := config.Default()
	cfg.Fetch.CacheSize = 0
	_, err = buildRegistry(cfg, log.New(io.Discard))
	assert.Error(t, err)
}
