// Package instruction turns a coordinate path into turn-by-turn instructions.
//
// The path is first reduced to significant points: interior points where the
// turn angle and the distance travelled since the previous significant point
// both exceed mode-specific thresholds. Each interior significant point becomes
// a maneuver classified by its turn angle; a path without one becomes a single
// "head" step. The last instruction is always an arrival with zero distance.
package instruction

import (
	"math"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
)

// Thresholds tune turn detection and maneuver classification. Angles are in
// degrees, distances in meters.
//
//	|a| <  Straight             straight
//	|a| <  Slight               slight-left / slight-right
//	|a| <= Sharp                turn-left / turn-right
//	|a| <  UTurn                sharp-left / sharp-right
//	|a| >= UTurn                u-turn
type Thresholds struct {
	MinTurnAngle       float64
	MinSegmentDistance float64
	Straight           float64
	Slight             float64
	Sharp              float64
	UTurn              float64
}

// ThresholdsFor returns the thresholds for class. Walking (and unspecified)
// uses finer detection than cycling and driving.
func ThresholdsFor(class network.VehicleClass) Thresholds {
	switch class {
	case network.Cycling, network.Driving:
		return Thresholds{MinTurnAngle: 20, MinSegmentDistance: 15, Straight: 15, Slight: 45, Sharp: 120, UTurn: 160}
	default:
		return Thresholds{MinTurnAngle: 12, MinSegmentDistance: 8, Straight: 10, Slight: 30, Sharp: 100, UTurn: 160}
	}
}

// SignificantPoints returns the indices of path that carry a maneuver, always
// including the first and last. Paths of two points or fewer are returned as
// start and end only.
func SignificantPoints(path []geo.Coordinate, t Thresholds) []int {
	switch n := len(path); {
	case n == 0:
		return nil
	case n == 1:
		return []int{0}
	case n == 2:
		return []int{0, 1}
	}

	sig := []int{0}
	run := 0.0
	for i := 1; i < len(path)-1; i++ {
		run += geo.Distance(path[i-1], path[i])
		angle := geo.TurnAngle(path[i-1], path[i], path[i+1])
		if math.Abs(angle) > t.MinTurnAngle && run > t.MinSegmentDistance {
			sig = append(sig, i)
			run = 0
		}
	}

	return append(sig, len(path)-1)
}

// Classify maps a signed turn angle (positive = right) onto a maneuver.
func Classify(angle float64, t Thresholds) route.Maneuver {
	a := math.Abs(angle)
	right := angle > 0

	switch {
	case a < t.Straight:
		return route.Straight
	case a >= t.UTurn:
		return route.UTurn
	case a > t.Sharp:
		return pick(right, route.SharpRight, route.SharpLeft)
	case a < t.Slight:
		return pick(right, route.SlightRight, route.SlightLeft)
	default:
		return pick(right, route.TurnRight, route.TurnLeft)
	}
}

func pick(right bool, r, l route.Maneuver) route.Maneuver {
	if right {
		return r
	}
	return l
}
