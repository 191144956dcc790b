// Package network builds and stores the routable road-and-path graph of a
// local area from line features.
//
// A Graph is undirected and weighted. Nodes are identified by their
// coordinate rounded to 1e-7 degrees, so shared endpoints of different input
// features collapse into a single junction. Every edge carries a RoadType,
// an optional name, its raw haversine length and a routing weight
// (length × RoadType.Multiplier) that biases the search towards proper roads.
//
// Vehicle accessibility is not stored on edges: Build evaluates
// VehicleClass.Accepts per request and skips whole features that the class
// may not use, so one Graph serves exactly one vehicle class.
//
// All Graph methods are safe for concurrent use. muNode guards the node
// catalog, muEdgeAdj guards edges and adjacency; lock order is always
// muNode -> muEdgeAdj.
//
// Errors:
//
//	ErrNodeNotFound        - requested node does not exist.
//	ErrEdgeNotFound        - requested edge does not exist.
//	ErrLoopNotAllowed      - an edge would connect a node to itself.
//	ErrInvalidCoordinate   - a feature coordinate is outside the WGS84 range.
//	ErrUnknownVehicleClass - vehicle class string not recognised.
package network

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/trailnav/geo"
)

// Sentinel errors for network operations.
var (
	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("network: node not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("network: edge not found")

	// ErrLoopNotAllowed indicates an edge whose endpoints resolve to the same node.
	ErrLoopNotAllowed = errors.New("network: self-loop not allowed")

	// ErrInvalidCoordinate indicates a feature with an out-of-range coordinate.
	ErrInvalidCoordinate = errors.New("network: invalid feature coordinate")

	// ErrUnknownVehicleClass indicates an unrecognised vehicle class name.
	ErrUnknownVehicleClass = errors.New("network: unknown vehicle class")
)

// RoadType classifies an edge for weighting and accessibility.
type RoadType string

const (
	Road     RoadType = "road"
	Footway  RoadType = "footway"
	Cycleway RoadType = "cycleway"
	Mixed    RoadType = "mixed"
)

// Multiplier returns the routing-weight factor applied to the raw length of
// an edge of this type. Roads are cheaper, footways costlier.
func (t RoadType) Multiplier() float64 {
	switch t {
	case Road:
		return 0.8
	case Footway:
		return 1.5
	default:
		return 1.0
	}
}

// VehicleClass determines which road types are traversable and which
// nominal speed applies. The zero value means "unspecified".
type VehicleClass string

const (
	Walking VehicleClass = "walking"
	Cycling VehicleClass = "cycling"
	Driving VehicleClass = "driving"
)

// ParseVehicleClass accepts the canonical names plus the travel-mode aliases
// used by clients (pedestrian/foot, bike/bicycle, car).
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "walking", "walk", "pedestrian", "foot":
		return Walking, nil
	case "cycling", "cycle", "bike", "bicycle":
		return Cycling, nil
	case "driving", "drive", "car":
		return Driving, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleClass, s)
	}
}

// Accepts reports whether the class may travel on road type t.
func (c VehicleClass) Accepts(t RoadType) bool {
	switch c {
	case Driving:
		return t == Road || t == Mixed
	case Cycling:
		return t == Road || t == Cycleway || t == Mixed
	default:
		return true
	}
}

// NominalSpeedKmh is the fixed speed assumed for the class at campground
// scale. Unspecified classes return 0.
func (c VehicleClass) NominalSpeedKmh() float64 {
	switch c {
	case Walking:
		return 3.6
	case Cycling:
		return 7.2
	case Driving:
		return 15
	default:
		return 0
	}
}

// NominalSpeed is NominalSpeedKmh in meters per second.
func (c VehicleClass) NominalSpeed() float64 {
	return c.NominalSpeedKmh() / 3.6
}

// Node is a junction or shape point of the network.
type Node struct {
	// ID is derived from Coordinate rounded to 1e-7 degrees.
	ID string

	// Coordinate is the position of the first feature point that created the node.
	Coordinate geo.Coordinate

	// Degree is the number of distinct neighbours, recomputed after Build.
	Degree int
}

// Edge is an undirected connection between two nodes.
type Edge struct {
	ID       string
	From     string
	To       string
	RoadType RoadType
	Name     string

	// Distance is the raw haversine length in meters.
	Distance float64

	// Weight is Distance × RoadType.Multiplier, the cost used by path search.
	Weight float64
}

// Other returns the endpoint of e opposite to id.
func (e *Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}
	return e.From
}

// Feature is one input line: an ordered coordinate sequence plus tags
// (road-type hints such as highway/surface/foot and an optional name).
type Feature struct {
	Coordinates []geo.Coordinate
	Tags        map[string]string
}

// Name returns the feature's "name" tag, if any.
func (f Feature) Name() string {
	return strings.TrimSpace(f.Tags["name"])
}

// nodePrecision is the rounding factor for node identity (1e-7 degrees ≈ 1 cm).
const nodePrecision = 1e7

// NodeID derives the deterministic node identifier of c.
func NodeID(c geo.Coordinate) string {
	lat := math.Round(c.Lat*nodePrecision) / nodePrecision
	lng := math.Round(c.Lng*nodePrecision) / nodePrecision
	if lat == 0 {
		lat = 0 // normalise -0
	}
	if lng == 0 {
		lng = 0
	}
	return fmt.Sprintf("%.7f,%.7f", lat, lng)
}
