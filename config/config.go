// Package config loads the YAML configuration of a trailnav process.
//
// Every section is optional. Parse starts from Default, overlays the document
// and validates the result, so a file only needs the keys it changes:
//
//	routing:
//	  mode: cycling
//	  search_radius_m: 80
//	tracking:
//	  off_route_m: 10
//	reroute:
//	  min_time_saved: 90s
//	locale:
//	  language: fr
//	logging:
//	  level: debug
//	  format: console
//	metrics:
//	  addr: ":9090"
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/trailnav/announce"
	"github.com/katalvlaran/trailnav/instruction"
	"github.com/katalvlaran/trailnav/locale"
	"github.com/katalvlaran/trailnav/logging"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/reroute"
	"github.com/katalvlaran/trailnav/routing"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

// ErrInvalid indicates a configuration that failed validation.
var ErrInvalid = errors.New("config: invalid configuration")

// RoutingConfig contains graph routing settings.
type RoutingConfig struct {
	Mode               string  `yaml:"mode" validate:"omitempty,oneof=walking cycling driving"`
	SearchRadiusMeters float64 `yaml:"search_radius_m" validate:"gt=0"`
	DirectCutoffMeters float64 `yaml:"direct_cutoff_m" validate:"gte=0"`
}

// TrackingConfig contains route progress thresholds.
type TrackingConfig struct {
	OffRouteMeters    float64 `yaml:"off_route_m" validate:"gt=0"`
	StepAdvanceMeters float64 `yaml:"step_advance_m" validate:"gt=0"`
	CompleteMeters    float64 `yaml:"complete_m" validate:"gt=0"`
}

// SpeedConfig contains speed estimator settings.
type SpeedConfig struct {
	Capacity          int     `yaml:"capacity" validate:"gte=2"`
	Window            int     `yaml:"window" validate:"gte=2,ltefield=Capacity"`
	MinMovementMeters float64 `yaml:"min_movement_m" validate:"gte=0"`
	MaxKmh            float64 `yaml:"max_kmh" validate:"gt=0"`
	MovingKmh         float64 `yaml:"moving_kmh" validate:"gte=0"`
	DefaultKmh        float64 `yaml:"default_kmh" validate:"gt=0"`
}

// RerouteConfig contains reroute trigger and benefit thresholds.
type RerouteConfig struct {
	DistanceMeters   float64       `yaml:"distance_m" validate:"gt=0"`
	ConsecutiveCount int           `yaml:"consecutive" validate:"gte=1"`
	MinTimeSaved     time.Duration `yaml:"min_time_saved" validate:"gte=0"`
	MinDistanceSaved float64       `yaml:"min_distance_saved_m" validate:"gte=0"`
}

// AnnounceConfig contains voice guidance gating.
type AnnounceConfig struct {
	Enabled           bool          `yaml:"enabled"`
	MinDistanceMeters float64       `yaml:"min_distance_m" validate:"gte=0"`
	MinInterval       time.Duration `yaml:"min_interval" validate:"gte=0"`
	MaxSilence        time.Duration `yaml:"max_silence" validate:"gte=0"`
}

// LocaleConfig selects the instruction language.
type LocaleConfig struct {
	Language string `yaml:"language" validate:"omitempty,bcp47_language_tag"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// MetricsConfig contains the metrics endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Config is the root configuration structure.
type Config struct {
	Routing  RoutingConfig  `yaml:"routing"`
	Tracking TrackingConfig `yaml:"tracking"`
	Speed    SpeedConfig    `yaml:"speed"`
	Reroute  RerouteConfig  `yaml:"reroute"`
	Announce AnnounceConfig `yaml:"announce"`
	Locale   LocaleConfig   `yaml:"locale"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Default returns the built-in defaults of every component.
func Default() Config {
	sp := speed.DefaultOptions()
	tr := tracking.DefaultOptions()
	rp := reroute.DefaultPolicy()
	ap := announce.DefaultPolicy()

	return Config{
		Routing: RoutingConfig{
			Mode:               string(network.Walking),
			SearchRadiusMeters: routing.DefaultSearchRadius,
			DirectCutoffMeters: reroute.DefaultCutoff,
		},
		Tracking: TrackingConfig{
			OffRouteMeters:    tr.OffRouteMeters,
			StepAdvanceMeters: tr.StepAdvanceMeters,
			CompleteMeters:    tr.CompleteMeters,
		},
		Speed: SpeedConfig{
			Capacity:          sp.Capacity,
			Window:            sp.Window,
			MinMovementMeters: sp.MinMovement,
			MaxKmh:            sp.MaxSpeedKmh,
			MovingKmh:         sp.MovingKmh,
			DefaultKmh:        sp.DefaultSpeedKmh,
		},
		Reroute: RerouteConfig{
			DistanceMeters:   rp.DistanceMeters,
			ConsecutiveCount: rp.ConsecutiveCount,
			MinTimeSaved:     rp.MinTimeSaved,
			MinDistanceSaved: rp.MinDistanceSaved,
		},
		Announce: AnnounceConfig{
			Enabled:           true,
			MinDistanceMeters: ap.MinDistance,
			MinInterval:       ap.MinInterval,
			MaxSilence:        ap.MaxSilence,
		},
		Locale:  LocaleConfig{Language: "en"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays a YAML document on Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// VehicleClass returns the configured travel mode.
func (c RoutingConfig) VehicleClass() (network.VehicleClass, error) {
	if c.Mode == "" {
		return network.Walking, nil
	}
	return network.ParseVehicleClass(c.Mode)
}

// PlannerOptions returns the routing.Planner options of the section.
func (c RoutingConfig) PlannerOptions() []routing.PlannerOption {
	return []routing.PlannerOption{routing.WithSearchRadius(c.SearchRadiusMeters)}
}

// Options returns the tracking options of the section.
func (c TrackingConfig) Options() []tracking.Option {
	return []tracking.Option{
		tracking.WithOffRouteThreshold(c.OffRouteMeters),
		tracking.WithStepAdvanceThreshold(c.StepAdvanceMeters),
		tracking.WithCompleteThreshold(c.CompleteMeters),
	}
}

// Options returns the speed estimator options of the section.
func (c SpeedConfig) Options() []speed.Option {
	return []speed.Option{
		speed.WithCapacity(c.Capacity),
		speed.WithWindow(c.Window),
		speed.WithMinMovement(c.MinMovementMeters),
		speed.WithMaxSpeed(c.MaxKmh),
		speed.WithMovingThreshold(c.MovingKmh),
		speed.WithDefaultSpeed(c.DefaultKmh),
	}
}

// Policy returns the reroute policy of the section.
func (c RerouteConfig) Policy() reroute.Policy {
	return reroute.Policy{
		DistanceMeters:   c.DistanceMeters,
		ConsecutiveCount: c.ConsecutiveCount,
		MinTimeSaved:     c.MinTimeSaved,
		MinDistanceSaved: c.MinDistanceSaved,
	}
}

// Policy returns the announcement policy of the section.
func (c AnnounceConfig) Policy() announce.Policy {
	return announce.Policy{
		MinDistance: c.MinDistanceMeters,
		MinInterval: c.MinInterval,
		MaxSilence:  c.MaxSilence,
	}
}

// Translator returns the catalog for the configured language.
func (c LocaleConfig) Translator() locale.Translator { return locale.New(c.Language) }

// Generator returns an instruction generator speaking the configured language.
func (c LocaleConfig) Generator() *instruction.Generator {
	return instruction.NewGenerator(instruction.WithTranslator(c.Translator()))
}

// Config returns the logging.Config of the section.
func (c LoggingConfig) Config() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format}
}
