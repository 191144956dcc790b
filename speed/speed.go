// Package speed keeps a rolling estimate of travel speed from position samples
// and derives a dynamic ETA.
//
// The Estimator stores a bounded ring of samples (oldest evicted). Samples
// closer than the minimum movement to the previous one are dropped to
// suppress GPS jitter, and the smoothed current speed is capped to reject
// position spikes.
package speed

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
)

// ErrBadOption is the panic value of option constructors given invalid input.
var ErrBadOption = errors.New("speed: invalid option")

// Sample is one timestamped position.
type Sample struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Source names the speed an ETA was computed from.
type Source string

const (
	SourceNominal Source = "nominal"
	SourceCurrent Source = "current"
	SourceAverage Source = "average"
	SourceDefault Source = "default"
)

// ETA is a dynamic arrival estimate.
type ETA struct {
	Remaining      time.Duration `json:"remaining"`
	Arrival        time.Time     `json:"arrival"`
	DistanceMeters float64       `json:"distance_meters"`
	SpeedKmh       float64       `json:"speed_kmh"`
	Source         Source        `json:"source"`
}

// Options configures an Estimator.
type Options struct {
	Capacity        int     // ring size
	MinMovement     float64 // meters; closer samples are dropped
	Window          int     // samples used for the current speed
	MaxSpeedKmh     float64 // ceiling of reported speeds
	MovingKmh       float64 // current speed at or above which the agent is moving
	DefaultSpeedKmh float64 // ETA speed when nothing better is known
	Clock           func() time.Time
}

// Option represents a functional option for configuring an Estimator.
type Option func(*Options)

// WithCapacity sets the history size. Panics if n < 2.
func WithCapacity(n int) Option {
	if n < 2 {
		panic(ErrBadOption.Error() + ": capacity < 2")
	}
	return func(o *Options) { o.Capacity = n }
}

// WithMinMovement sets the jitter threshold in meters. Panics if negative.
func WithMinMovement(m float64) Option {
	if m < 0 {
		panic(ErrBadOption.Error() + ": negative min movement")
	}
	return func(o *Options) { o.MinMovement = m }
}

// WithWindow sets the smoothing window. Panics if n < 2.
func WithWindow(n int) Option {
	if n < 2 {
		panic(ErrBadOption.Error() + ": window < 2")
	}
	return func(o *Options) { o.Window = n }
}

// WithMaxSpeed sets the speed ceiling in km/h. Panics if not positive.
func WithMaxSpeed(kmh float64) Option {
	if kmh <= 0 {
		panic(ErrBadOption.Error() + ": non-positive max speed")
	}
	return func(o *Options) { o.MaxSpeedKmh = kmh }
}

// WithMovingThreshold sets the current speed, in km/h, at or above which the
// agent counts as moving. Panics if negative.
func WithMovingThreshold(kmh float64) Option {
	if kmh < 0 {
		panic(ErrBadOption.Error() + ": negative moving threshold")
	}
	return func(o *Options) { o.MovingKmh = kmh }
}

// WithDefaultSpeed sets the ETA fallback speed in km/h. Panics if not positive.
func WithDefaultSpeed(kmh float64) Option {
	if kmh <= 0 {
		panic(ErrBadOption.Error() + ": non-positive default speed")
	}
	return func(o *Options) { o.DefaultSpeedKmh = kmh }
}

// WithClock sets the time source used for ETA arrival times.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

// DefaultOptions returns a 20-sample history, 1 m jitter filter, 5-sample
// window, 50 km/h ceiling and a 4 km/h walking default.
func DefaultOptions() Options {
	return Options{
		Capacity:        20,
		MinMovement:     1,
		Window:          5,
		MaxSpeedKmh:     50,
		MovingKmh:       1,
		DefaultSpeedKmh: 4,
		Clock:           time.Now,
	}
}

// Estimator is safe for concurrent use.
type Estimator struct {
	mu   sync.Mutex
	opts Options

	ring  []Sample
	head  int // index of the oldest sample
	count int

	first      time.Time
	totalDist  float64
	currentKmh float64
	maxKmh     float64
}

// New returns an empty Estimator.
func New(opts ...Option) *Estimator {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Window > cfg.Capacity {
		cfg.Window = cfg.Capacity
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Estimator{opts: cfg, ring: make([]Sample, cfg.Capacity)}
}

// Add records s and reports whether it was kept. Samples with invalid
// coordinates, timestamps not after the previous sample, or movement below
// the minimum are dropped.
func (e *Estimator) Add(s Sample) bool {
	if !s.Coordinate.Valid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.count > 0 {
		last := e.at(e.count - 1)
		if !s.Timestamp.After(last.Timestamp) {
			return false
		}
		d := geo.Distance(last.Coordinate, s.Coordinate)
		if d < e.opts.MinMovement {
			return false
		}
		e.totalDist += d
	} else {
		e.first = s.Timestamp
	}

	e.push(s)
	e.currentKmh = e.windowSpeed()
	if e.currentKmh > e.maxKmh {
		e.maxKmh = e.currentKmh
	}
	return true
}

// CurrentSpeedKmh is the capped speed over the most recent window.
func (e *Estimator) CurrentSpeedKmh() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentKmh
}

// AverageSpeedKmh is the total distance over the time between the first and
// latest kept samples, capped.
func (e *Estimator) AverageSpeedKmh() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.average()
}

// MaxSpeedKmh is the highest current speed seen.
func (e *Estimator) MaxSpeedKmh() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxKmh
}

// IsMoving reports whether the current speed is at least the moving threshold.
func (e *Estimator) IsMoving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentKmh >= e.opts.MovingKmh
}

// Len returns the number of stored samples.
func (e *Estimator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Samples returns the stored samples, oldest first.
func (e *Estimator) Samples() []Sample {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Sample, e.count)
	for i := range out {
		out[i] = e.at(i)
	}
	return out
}

// DynamicETA estimates the time to cover remaining meters.
//
// Speed priority: the class's nominal speed when class is set, the current
// speed while moving, the average speed, then the default walking speed.
func (e *Estimator) DynamicETA(remaining float64, class network.VehicleClass) ETA {
	if remaining < 0 || math.IsNaN(remaining) {
		remaining = 0
	}

	e.mu.Lock()
	kmh, src := class.NominalSpeedKmh(), SourceNominal
	switch {
	case kmh > 0:
	case e.currentKmh >= e.opts.MovingKmh:
		kmh, src = e.currentKmh, SourceCurrent
	case e.average() > 0:
		kmh, src = e.average(), SourceAverage
	default:
		kmh, src = e.opts.DefaultSpeedKmh, SourceDefault
	}
	now := e.opts.Clock()
	e.mu.Unlock()

	left := time.Duration(remaining / (kmh / 3.6) * float64(time.Second))
	return ETA{
		Remaining:      left,
		Arrival:        now.Add(left),
		DistanceMeters: remaining,
		SpeedKmh:       kmh,
		Source:         src,
	}
}

// at returns the i-th stored sample, oldest first. Caller holds mu.
func (e *Estimator) at(i int) Sample {
	return e.ring[(e.head+i)%len(e.ring)]
}

// push appends s, evicting the oldest sample when full. Caller holds mu.
func (e *Estimator) push(s Sample) {
	if e.count < len(e.ring) {
		e.ring[(e.head+e.count)%len(e.ring)] = s
		e.count++
		return
	}
	e.ring[e.head] = s
	e.head = (e.head + 1) % len(e.ring)
}

// windowSpeed is the path length over elapsed time across the last Window
// samples, in km/h, capped. Caller holds mu.
func (e *Estimator) windowSpeed() float64 {
	n := e.opts.Window
	if n > e.count {
		n = e.count
	}
	if n < 2 {
		return 0
	}

	start := e.count - n
	dist := 0.0
	for i := start + 1; i < e.count; i++ {
		dist += geo.Distance(e.at(i-1).Coordinate, e.at(i).Coordinate)
	}
	elapsed := e.at(e.count - 1).Timestamp.Sub(e.at(start).Timestamp).Seconds()

	return e.capped(dist, elapsed)
}

func (e *Estimator) average() float64 {
	if e.count < 2 {
		return 0
	}
	elapsed := e.at(e.count - 1).Timestamp.Sub(e.first).Seconds()
	return e.capped(e.totalDist, elapsed)
}

func (e *Estimator) capped(meters, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return math.Min(meters/seconds*3.6, e.opts.MaxSpeedKmh)
}
