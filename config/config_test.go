package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trailnav/config"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/reroute"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, reroute.DefaultPolicy(), cfg.Reroute.Policy())
	class, err := cfg.Routing.VehicleClass()
	require.NoError(t, err)
	assert.Equal(t, network.Walking, class)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
routing:
  mode: cycling
tracking:
  off_route_m: 12
reroute:
  min_time_saved: 90s
announce:
  max_silence: 3m
locale:
  language: fr
logging:
  level: debug
  format: console
metrics:
  addr: ":9090"
`))
	require.NoError(t, err)

	class, err := cfg.Routing.VehicleClass()
	require.NoError(t, err)
	assert.Equal(t, network.Cycling, class)
	assert.Equal(t, 50.0, cfg.Routing.SearchRadiusMeters, "unset keys keep defaults")

	assert.Equal(t, 12.0, cfg.Tracking.OffRouteMeters)
	assert.Equal(t, 15.0, cfg.Tracking.StepAdvanceMeters)
	assert.Equal(t, 90*time.Second, cfg.Reroute.Policy().MinTimeSaved)
	assert.Equal(t, 3*time.Minute, cfg.Announce.Policy().MaxSilence)
	assert.Equal(t, "fr", cfg.Locale.Translator().Language())
	assert.Equal(t, "debug", cfg.Logging.Config().Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown mode", "routing:\n  mode: flying\n"},
		{"zero radius", "routing:\n  search_radius_m: 0\n"},
		{"negative threshold", "tracking:\n  complete_m: -1\n"},
		{"window above capacity", "speed:\n  capacity: 4\n  window: 6\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad metrics addr", "metrics:\n  addr: nowhere\n"},
		{"bad language", "locale:\n  language: \"not a tag!\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}

	_, err := config.Parse([]byte("routing: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trailnav.yml")
	require.NoError(t, os.WriteFile(path, []byte("speed:\n  default_kmh: 5\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Speed.DefaultKmh)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOptions_ApplyToComponents(t *testing.T) {
	cfg, err := config.Parse([]byte("tracking:\n  step_advance_m: 20\nspeed:\n  capacity: 10\n  max_kmh: 30\n"))
	require.NoError(t, err)

	to := tracking.DefaultOptions()
	for _, opt := range cfg.Tracking.Options() {
		opt(&to)
	}
	assert.Equal(t, 20.0, to.StepAdvanceMeters)
	assert.Equal(t, 5.0, to.OffRouteMeters)

	so := speed.DefaultOptions()
	for _, opt := range cfg.Speed.Options() {
		opt(&so)
	}
	assert.Equal(t, 10, so.Capacity)
	assert.Equal(t, 30.0, so.MaxSpeedKmh)
	assert.Equal(t, 4.0, so.DefaultSpeedKmh)

	assert.Len(t, cfg.Routing.PlannerOptions(), 1)
	assert.NotNil(t, cfg.Locale.Generator())
}
