package reroute

import (
	"context"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/instruction"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
)

// Fallback reasons recorded on direct routes.
const (
	ReasonShortHop  = "short-hop"
	ReasonNoNetwork = "no-network"
)

// DefaultCutoff is the distance in meters below which FallbackPlanner skips
// graph search.
const DefaultCutoff = 100.0

// midpointAbove is the hop length in meters above which a direct route gets a
// midpoint.
const midpointAbove = 50.0

// Direct returns a straight-line route from → to with English instructions.
func Direct(from, to geo.Coordinate, class network.VehicleClass, reason string) route.Route {
	return DirectWith(nil, from, to, class, reason)
}

// DirectWith is Direct with instructions from gen (nil for the default).
// The geometry has two points, or three with the midpoint when the hop is
// longer than 50 m. Duration uses the class's nominal speed.
func DirectWith(gen *instruction.Generator, from, to geo.Coordinate, class network.VehicleClass, reason string) route.Route {
	if gen == nil {
		gen = instruction.NewGenerator()
	}
	if class == "" {
		class = network.Walking
	}

	dist := geo.Distance(from, to)
	path := []geo.Coordinate{from, to}
	if dist > midpointAbove {
		path = []geo.Coordinate{from, geo.Interpolate(from, to, 0.5), to}
	}

	return route.Route{
		Geometry:        path,
		Instructions:    gen.Generate(path, nil, class),
		DistanceMeters:  dist,
		DurationSeconds: instruction.Duration(dist, class),
		Class:           class,
		Method:          route.MethodDirect,
		FallbackReason:  reason,
	}
}

// FallbackPlanner answers short hops, or every request when Primary is nil,
// with a direct route and delegates the rest to Primary.
type FallbackPlanner struct {
	Primary   Planner
	Cutoff    float64 // meters; zero means DefaultCutoff
	Generator *instruction.Generator
}

// Plan implements Planner.
func (f FallbackPlanner) Plan(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	if err := from.Validate(); err != nil {
		return route.Route{}, err
	}
	if err := to.Validate(); err != nil {
		return route.Route{}, err
	}

	cutoff := f.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}

	switch {
	case f.Primary == nil:
		return DirectWith(f.Generator, from, to, class, ReasonNoNetwork), nil
	case geo.Distance(from, to) < cutoff:
		return DirectWith(f.Generator, from, to, class, ReasonShortHop), nil
	default:
		return f.Primary.Plan(ctx, from, to, class)
	}
}
