// Package tracking follows a moving agent along a fixed route.
//
// A Tracker is a small state machine over one route.Route:
//
//	tracking ──(> OffRouteMeters from route)──► off-route
//	off-route ──(back within threshold)──────► tracking
//	tracking/off-route ──(last step, near end)──► completed (terminal)
//
// Each Update projects the position onto every route segment, flags
// off-route samples, advances the active instruction when the next
// instruction point is near, and measures the remaining distance along the
// geometry. Notifications are returned as Events with the Progress; the
// tracker reports state and never rate-limits them.
//
// A Session owns a Tracker together with its speed.Estimator and applies
// each position sample to both under one lock.
package tracking

import (
	"errors"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/speed"
)

// ErrBadThreshold is the panic value of option constructors given a
// non-positive threshold.
var ErrBadThreshold = errors.New("tracking: threshold must be positive")

// State of a Tracker.
type State string

const (
	StateTracking  State = "tracking"
	StateOffRoute  State = "off-route"
	StateCompleted State = "completed"
)

// EventKind names a notification raised by Update.
type EventKind string

const (
	EventStepChanged EventKind = "step-changed"
	EventOffRoute    EventKind = "off-route"
	EventCompleted   EventKind = "route-completed"
)

// Event is one notification. StepIndex is set for step changes,
// DistanceMeters for off-route samples.
type Event struct {
	Kind           EventKind `json:"kind"`
	StepIndex      int       `json:"step_index,omitempty"`
	DistanceMeters float64   `json:"distance_meters,omitempty"`
}

// Progress is the tracking view after one sample.
type Progress struct {
	State             State          `json:"state"`
	StepIndex         int            `json:"step_index"`
	DistanceToNext    float64        `json:"distance_to_next"`
	DistanceRemaining float64        `json:"distance_remaining"`
	DistanceCompleted float64        `json:"distance_completed"`
	PercentComplete   float64        `json:"percent_complete"`
	IsOffRoute        bool           `json:"is_off_route"`
	OffRouteDistance  float64        `json:"off_route_distance"`
	OffRouteCount     int            `json:"off_route_count"`
	Projected         geo.Coordinate `json:"projected"`
	SegmentIndex      int            `json:"segment_index"`

	// Filled by Session.
	SpeedKmh float64   `json:"speed_kmh"`
	ETA      speed.ETA `json:"eta"`
}

// Update is the result of one position sample.
type Update struct {
	Progress
	Events []Event `json:"events,omitempty"`
}

// Has reports whether u carries an event of kind k.
func (u Update) Has(k EventKind) bool {
	for _, e := range u.Events {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Options holds the tracking thresholds in meters.
type Options struct {
	OffRouteMeters    float64
	StepAdvanceMeters float64
	CompleteMeters    float64
}

// Option represents a functional option for configuring a Tracker.
type Option func(*Options)

// WithOffRouteThreshold sets the off-route distance. Panics if m <= 0.
func WithOffRouteThreshold(m float64) Option {
	mustPositive(m)
	return func(o *Options) { o.OffRouteMeters = m }
}

// WithStepAdvanceThreshold sets the step advance distance. Panics if m <= 0.
func WithStepAdvanceThreshold(m float64) Option {
	mustPositive(m)
	return func(o *Options) { o.StepAdvanceMeters = m }
}

// WithCompleteThreshold sets the arrival distance. Panics if m <= 0.
func WithCompleteThreshold(m float64) Option {
	mustPositive(m)
	return func(o *Options) { o.CompleteMeters = m }
}

func mustPositive(m float64) {
	if !(m > 0) {
		panic(ErrBadThreshold.Error())
	}
}

// DefaultOptions returns 5 m off-route, 15 m step advance and 8 m arrival.
func DefaultOptions() Options {
	return Options{OffRouteMeters: 5, StepAdvanceMeters: 15, CompleteMeters: 8}
}

// Tracker is not safe for concurrent use; see Session.
type Tracker struct {
	route route.Route
	opts  Options

	cum   []float64 // cum[i] = distance along geometry to point i
	total float64

	step     int
	offRoute bool
	offCount int
	state    State
	last     Progress
}

// NewTracker starts tracking r.
func NewTracker(r route.Route, opts ...Option) *Tracker {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Tracker{route: r, opts: cfg, state: StateTracking}
	t.cum = make([]float64, len(r.Geometry))
	for i := 1; i < len(r.Geometry); i++ {
		t.cum[i] = t.cum[i-1] + geo.Distance(r.Geometry[i-1], r.Geometry[i])
	}
	if n := len(t.cum); n > 0 {
		t.total = t.cum[n-1]
	}
	t.last = Progress{State: StateTracking, DistanceRemaining: t.total}

	return t
}

// Route returns the tracked route.
func (t *Tracker) Route() route.Route { return t.route }

// State returns the current state.
func (t *Tracker) State() State { return t.state }

// Step returns the active instruction index.
func (t *Tracker) Step() int { return t.step }

// OffRouteCount returns the number of consecutive off-route samples.
func (t *Tracker) OffRouteCount() int { return t.offCount }

// Last returns the progress of the latest update.
func (t *Tracker) Last() Progress { return t.last }

// Update applies one position.
//
// Once completed, the last progress is returned unchanged with no events.
// Routes with fewer than two geometry points yield default progress. Invalid
// coordinates are ignored.
func (t *Tracker) Update(c geo.Coordinate) Update {
	if t.state == StateCompleted {
		return Update{Progress: t.last}
	}
	geom := t.route.Geometry
	if len(geom) < 2 {
		return Update{Progress: Progress{State: t.state}}
	}
	if !c.Valid() {
		return Update{Progress: t.last}
	}

	var events []Event
	proj, seg, dist := t.project(c)

	// Off-route.
	if dist > t.opts.OffRouteMeters {
		t.offRoute = true
		t.offCount++
		events = append(events, Event{Kind: EventOffRoute, DistanceMeters: dist})
	} else {
		t.offRoute = false
		t.offCount = 0
	}

	// Step advancement, at most one per sample.
	lastStep := len(t.route.Instructions) - 1
	if lastStep < 0 {
		lastStep = 0
	}
	if t.step < lastStep {
		next := t.route.Instructions[t.step+1].Point
		if geo.Distance(c, next) < t.opts.StepAdvanceMeters {
			t.step++
			events = append(events, Event{Kind: EventStepChanged, StepIndex: t.step})
		}
	}

	remaining := geo.Distance(proj, geom[seg+1]) + (t.total - t.cum[seg+1])

	// Completion.
	if t.step == lastStep && geo.Distance(c, geom[len(geom)-1]) < t.opts.CompleteMeters {
		t.state = StateCompleted
		remaining = 0
		events = append(events, Event{Kind: EventCompleted})
	} else if t.offRoute {
		t.state = StateOffRoute
	} else {
		t.state = StateTracking
	}

	p := Progress{
		State:             t.state,
		StepIndex:         t.step,
		DistanceRemaining: remaining,
		DistanceCompleted: t.total - remaining,
		PercentComplete:   percent(t.total, remaining),
		IsOffRoute:        t.offRoute,
		OffRouteDistance:  dist,
		OffRouteCount:     t.offCount,
		Projected:         proj,
		SegmentIndex:      seg,
	}
	p.DistanceToNext = t.distanceToNext(c, p.DistanceCompleted, remaining)

	t.last = p
	return Update{Progress: p, Events: events}
}

// project returns the closest point on the route, its segment index and the
// perpendicular distance. Ties keep the earliest segment.
func (t *Tracker) project(c geo.Coordinate) (geo.Coordinate, int, float64) {
	geom := t.route.Geometry
	best, bestSeg, bestDist := geom[0], 0, -1.0
	for i := 0; i < len(geom)-1; i++ {
		p := geo.ClosestPointOnSegment(c, geom[i], geom[i+1])
		if d := geo.Distance(c, p); bestDist < 0 || d < bestDist {
			best, bestSeg, bestDist = p, i, d
		}
	}
	return best, bestSeg, bestDist
}

// distanceToNext measures along the route to the next instruction point,
// falling back to a straight line once that point is behind the projection.
func (t *Tracker) distanceToNext(c geo.Coordinate, done, remaining float64) float64 {
	if t.step+1 >= len(t.route.Instructions) {
		return remaining
	}
	next := t.route.Instructions[t.step+1]
	if next.PathIndex < 0 || next.PathIndex >= len(t.cum) {
		return geo.Distance(c, next.Point)
	}
	if d := t.cum[next.PathIndex] - done; d >= 0 {
		return d
	}
	return geo.Distance(c, next.Point)
}

func percent(total, remaining float64) float64 {
	if total <= 0 {
		return 100
	}
	p := (total - remaining) / total * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
