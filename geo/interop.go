package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

// FromPoint converts an orb.Point ([lng, lat]) into a Coordinate.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// ToPoint converts c into an orb.Point ([lng, lat]).
func ToPoint(c Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// LineString converts a coordinate path into an orb.LineString.
func LineString(path []Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, c := range path {
		ls = append(ls, ToPoint(c))
	}
	return ls
}

// FromLineString converts an orb.LineString into a coordinate path.
func FromLineString(ls orb.LineString) []Coordinate {
	path := make([]Coordinate, 0, len(ls))
	for _, p := range ls {
		path = append(path, FromPoint(p))
	}
	return path
}

// EncodePolyline encodes path with the Google polyline algorithm (precision 1e-5).
func EncodePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a Google polyline string into coordinates.
func DecodePolyline(s string) ([]Coordinate, error) {
	coords, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("geo: decode polyline: %w", err)
	}
	path := make([]Coordinate, 0, len(coords))
	for _, c := range coords {
		path = append(path, Coordinate{Lat: c[0], Lng: c[1]})
	}
	return path, nil
}
