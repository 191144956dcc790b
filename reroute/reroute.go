// Package reroute decides when to recompute a route and runs the
// recomputation under a single in-flight guard.
//
// ShouldReroute combines two signals, a large deviation or a sustained run of
// off-route samples, so one noisy fix never triggers a reroute. Direct and
// FallbackPlanner synthesize straight-line routes for hops too short for
// graph search.
package reroute

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
)

var (
	// ErrRerouteInFlight indicates that a reroute was dropped because another is running.
	ErrRerouteInFlight = errors.New("reroute: reroute already in flight")

	// ErrNoPlanner indicates that a Controller has no planner to call.
	ErrNoPlanner = errors.New("reroute: no planner configured")
)

// Planner computes a route between two coordinates.
type Planner interface {
	Plan(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	return f(ctx, from, to, class)
}

// Policy holds the reroute and benefit thresholds.
type Policy struct {
	DistanceMeters   float64       // reroute when the deviation exceeds this
	ConsecutiveCount int           // or when more off-route samples than this occurred in a row
	MinTimeSaved     time.Duration // a new route is worth suggesting when it saves more time
	MinDistanceSaved float64       // or more distance, in meters
}

// DefaultPolicy returns 100 m / 3 samples, and 2 min / 100 m for benefits.
func DefaultPolicy() Policy {
	return Policy{DistanceMeters: 100, ConsecutiveCount: 3, MinTimeSaved: 2 * time.Minute, MinDistanceSaved: 100}
}

// ShouldReroute reports whether offRouteMeters or consecutive off-route
// samples exceed the policy.
func (p Policy) ShouldReroute(offRouteMeters float64, consecutive int) bool {
	return offRouteMeters > p.DistanceMeters || consecutive > p.ConsecutiveCount
}

// ShouldReroute applies DefaultPolicy.
func ShouldReroute(offRouteMeters float64, consecutive int) bool {
	return DefaultPolicy().ShouldReroute(offRouteMeters, consecutive)
}

// Benefit compares a candidate route with the current remaining distance.
type Benefit struct {
	DistanceSaved float64
	TimeSaved     time.Duration
	Worth         bool
}

// EstimateBenefit compares oldMeters and newMeters at class's nominal speed.
func (p Policy) EstimateBenefit(oldMeters, newMeters float64, class network.VehicleClass) Benefit {
	v := class.NominalSpeed()
	if v <= 0 {
		v = network.Walking.NominalSpeed()
	}
	saved := oldMeters - newMeters
	timeSaved := time.Duration(saved / v * float64(time.Second))

	return Benefit{
		DistanceSaved: saved,
		TimeSaved:     timeSaved,
		Worth:         timeSaved > p.MinTimeSaved || saved > p.MinDistanceSaved,
	}
}

// EstimateBenefit applies DefaultPolicy.
func EstimateBenefit(oldMeters, newMeters float64, class network.VehicleClass) Benefit {
	return DefaultPolicy().EstimateBenefit(oldMeters, newMeters, class)
}

// Controller runs at most one reroute at a time. Overlapping attempts are
// dropped, not queued.
type Controller struct {
	planner  Planner
	inFlight atomic.Bool
}

// NewController returns a Controller calling planner.
func NewController(planner Planner) *Controller {
	return &Controller{planner: planner}
}

// TryBegin claims the in-flight guard, reporting false if it is held.
func (c *Controller) TryBegin() bool { return c.inFlight.CompareAndSwap(false, true) }

// End releases the guard.
func (c *Controller) End() { c.inFlight.Store(false) }

// InFlight reports whether a reroute is running.
func (c *Controller) InFlight() bool { return c.inFlight.Load() }

// Reroute plans from the live position to the unchanged destination. It
// returns ErrRerouteInFlight without calling the planner when another
// reroute holds the guard.
func (c *Controller) Reroute(ctx context.Context, from, destination geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	if !c.TryBegin() {
		return route.Route{}, ErrRerouteInFlight
	}
	defer c.End()

	return c.Plan(ctx, from, destination, class)
}

// Plan calls the planner without touching the guard. Callers that claimed
// the guard with TryBegin use it and release with End.
func (c *Controller) Plan(ctx context.Context, from, destination geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	if c.planner == nil {
		return route.Route{}, ErrNoPlanner
	}
	return c.planner.Plan(ctx, from, destination, class)
}
