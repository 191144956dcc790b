// Package route defines the immutable values produced by route planning:
// a Route (path geometry, turn-by-turn instructions, totals and planning
// metadata) and its Instructions.
//
// A Route is never patched after it is produced. Accessors return copies of
// the underlying slices, and a recomputed route is a new value.
package route

import (
	"github.com/paulmach/orb"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
)

// Maneuver classifies an instruction.
type Maneuver string

const (
	Straight    Maneuver = "straight"
	TurnLeft    Maneuver = "turn-left"
	TurnRight   Maneuver = "turn-right"
	SlightLeft  Maneuver = "slight-left"
	SlightRight Maneuver = "slight-right"
	SharpLeft   Maneuver = "sharp-left"
	SharpRight  Maneuver = "sharp-right"
	UTurn       Maneuver = "u-turn"
	Arrive      Maneuver = "arrive"
)

// Method records how a route was produced.
type Method string

const (
	// MethodGraph routes come from shortest-path search over the road network.
	MethodGraph Method = "graph"
	// MethodDirect routes are synthesized straight lines between two points.
	MethodDirect Method = "direct"
)

// Instruction is one turn-by-turn step.
//
// Point is Geometry[PathIndex]. DistanceMeters and DurationSeconds cover the
// stretch from Point to the next instruction's Point; the arrival step has
// zero distance.
//
// On a route with turns, step 0 is the first turn and its distance starts at
// the turn point. The approach from Geometry[0] belongs to no instruction, so
// instruction distances sum to Route.DistanceMeters minus that approach.
type Instruction struct {
	Text            string         `json:"text"`
	DistanceMeters  float64        `json:"distance_meters"`
	DurationSeconds float64        `json:"duration_seconds"`
	Maneuver        Maneuver       `json:"maneuver"`
	StepIndex       int            `json:"step_index"`
	Point           geo.Coordinate `json:"point"`
	PathIndex       int            `json:"path_index"`
	Name            string         `json:"name,omitempty"`
}

// Route is a planned path with its instructions.
type Route struct {
	Geometry        []geo.Coordinate     `json:"geometry"`
	Instructions    []Instruction        `json:"instructions"`
	DistanceMeters  float64              `json:"distance_meters"`
	DurationSeconds float64              `json:"duration_seconds"`
	Class           network.VehicleClass `json:"class,omitempty"`
	Method          Method               `json:"method"`
	FallbackReason  string               `json:"fallback_reason,omitempty"`
}

// Path returns a copy of the route geometry.
func (r Route) Path() []geo.Coordinate {
	out := make([]geo.Coordinate, len(r.Geometry))
	copy(out, r.Geometry)
	return out
}

// Steps returns a copy of the instructions.
func (r Route) Steps() []Instruction {
	out := make([]Instruction, len(r.Instructions))
	copy(out, r.Instructions)
	return out
}

// Destination returns the last geometry point, or false for an empty route.
func (r Route) Destination() (geo.Coordinate, bool) {
	if len(r.Geometry) == 0 {
		return geo.Coordinate{}, false
	}
	return r.Geometry[len(r.Geometry)-1], true
}

// Final returns the last instruction, or false if there are none.
func (r Route) Final() (Instruction, bool) {
	if len(r.Instructions) == 0 {
		return Instruction{}, false
	}
	return r.Instructions[len(r.Instructions)-1], true
}

// Polyline returns the geometry as an encoded Google polyline.
func (r Route) Polyline() string {
	return geo.EncodePolyline(r.Geometry)
}

// LineString returns the geometry as an orb.LineString.
func (r Route) LineString() orb.LineString {
	return geo.LineString(r.Geometry)
}
