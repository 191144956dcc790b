// Package geo provides the pure geometry used across trailnav: haversine
// distance, initial bearing, signed turn angles and point-to-segment
// projection on WGS84 coordinates.
//
// All functions are stateless and return new values; a Coordinate is never
// mutated in place. Precision targets local (campground-scale) distances,
// where haversine stays within ±0.5% of the ellipsoidal distance.
//
// Errors:
//
//	ErrInvalidCoordinate - latitude/longitude outside [-90,90]/[-180,180] or non-finite.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371008.8

// ErrInvalidCoordinate indicates a coordinate outside the valid WGS84 range.
var ErrInvalidCoordinate = errors.New("geo: invalid coordinate")

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Valid reports whether c is finite and inside the WGS84 range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return math.Abs(c.Lat) <= 90 && math.Abs(c.Lng) <= 180
}

// Validate returns ErrInvalidCoordinate (wrapped with the offending value) if c is not Valid.
func (c Coordinate) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	return nil
}

// String renders c as "lat,lng" with 7 decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lng)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func wrap360(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// Distance returns the haversine great-circle distance between a and b in meters.
// Distance is symmetric and Distance(a, a) == 0.
func Distance(a, b Coordinate) float64 {
	φ1 := toRadians(a.Lat)
	φ2 := toRadians(b.Lat)
	Δφ := φ2 - φ1
	Δλ := toRadians(b.Lng - a.Lng)

	h := math.Sin(Δφ/2)*math.Sin(Δφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	if h > 1 {
		h = 1
	}
	δ := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * δ
}

// Bearing returns the initial bearing from -> to in degrees, in [0, 360).
// Coincident points yield 0.
func Bearing(from, to Coordinate) float64 {
	φ1 := toRadians(from.Lat)
	φ2 := toRadians(to.Lat)
	Δλ := toRadians(to.Lng - from.Lng)

	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	y := math.Sin(Δλ) * math.Cos(φ2)
	if x == 0 && y == 0 {
		return 0
	}

	return wrap360(toDegrees(math.Atan2(y, x)))
}

// NormalizeAngle maps any angle in degrees onto (-180, 180].
func NormalizeAngle(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// TurnAngle returns the signed heading change at cur when travelling
// prev -> cur -> next, in (-180, 180]. Positive values are right turns.
// A degenerate leg (coincident points) yields 0.
func TurnAngle(prev, cur, next Coordinate) float64 {
	if prev == cur || cur == next {
		return 0
	}
	in := Bearing(prev, cur)
	out := Bearing(cur, next)

	return NormalizeAngle(out - in)
}

// ClosestPointOnSegment projects p orthogonally onto the segment a-b and clamps
// the result to the segment. The projection is done in a local equirectangular
// frame centred on the segment, which is exact enough at segment lengths of a
// few hundred meters. A zero-length segment returns a.
func ClosestPointOnSegment(p, a, b Coordinate) Coordinate {
	kx := math.Cos(toRadians((a.Lat + b.Lat) / 2))

	dx := (b.Lng - a.Lng) * kx
	dy := b.Lat - a.Lat
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}

	px := (p.Lng - a.Lng) * kx
	py := p.Lat - a.Lat
	t := (px*dx + py*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return Interpolate(a, b, t)
}

// Interpolate returns the point at fraction t along a-b (linear in degrees).
func Interpolate(a, b Coordinate, t float64) Coordinate {
	return Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// PathLength sums the haversine lengths of consecutive segments of path.
func PathLength(path []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

// Cardinal maps a bearing onto one of eight compass directions
// ("north", "northeast", ... "northwest").
func Cardinal(bearing float64) string {
	names := [8]string{"north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}
	idx := int(math.Floor((wrap360(bearing)+22.5)/45)) % 8

	return names[idx]
}
