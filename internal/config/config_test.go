package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localatlas/bizscout/internal/ratelimit"
)

func TestLoad_Defaults(t *testing.T) {
	// Run in an empty directory so no config.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "search_history.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "Pakistan", cfg.Geo.Country)
	assert.Equal(t, "Sindh", cfg.Geo.Province)
	assert.Equal(t, "PK", cfg.Phone.Region)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Overpass.TimeoutSecs)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, 1, cfg.Export.MaxAgeHours)
	assert.Empty(t, cfg.Places.Key, "reviews source is disabled out of the box")

	assert.InDelta(t, 1.0, cfg.Cooldowns.GeocodeSecs, 1e-9)
	assert.InDelta(t, 60.0, cfg.Cooldowns.PipelineSecs, 1e-9)
}

func TestCooldownConfig_Durations(t *testing.T) {
	c := CooldownConfig{
		GeocodeSecs:         0.5,
		ListingSecs:         1,
		DirectorySearchSecs: 1,
		DirectoryDetailSecs: 1,
		WebsiteSecs:         2,
		ReviewsSecs:         1,
		PipelineSecs:        60,
	}

	d := c.Durations()
	assert.Equal(t, 500*time.Millisecond, d[ratelimit.SourceGeocode])
	assert.Equal(t, 2*time.Second, d[ratelimit.SourceWebsite])
	assert.Equal(t, time.Minute, d[ratelimit.SourcePipeline])
	assert.Len(t, d, 7, "every source key gets a cooldown")
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
