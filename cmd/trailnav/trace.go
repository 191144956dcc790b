package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/speed"
)

var errBadCoordinate = errors.New("trailnav: coordinate must be \"lat,lng\"")

// parseCoordinate reads "lat,lng".
func parseCoordinate(s string) (geo.Coordinate, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("%w: %q", errBadCoordinate, s)
	}
	c, err := coordinate(lat, lng)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %q", err, s)
	}
	return c, nil
}

func coordinate(lat, lng string) (geo.Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return geo.Coordinate{}, errBadCoordinate
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return geo.Coordinate{}, errBadCoordinate
	}
	c := geo.Coordinate{Lat: la, Lng: ln}
	if err := c.Validate(); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

// readTrace decodes "unix_seconds,lat,lng" rows. Blank lines and lines
// starting with '#' are skipped, as is a header row whose first field is not
// numeric.
func readTrace(r io.Reader) ([]speed.Sample, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []speed.Sample
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("trailnav: trace: %w", err)
		}

		sec, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, fmt.Errorf("trailnav: trace row %d: bad timestamp %q", row, rec[0])
		}
		c, err := coordinate(rec[1], rec[2])
		if err != nil {
			return nil, fmt.Errorf("trailnav: trace row %d: %w", row, err)
		}

		whole := int64(sec)
		ts := time.Unix(whole, int64((sec-float64(whole))*1e9)).UTC()
		out = append(out, speed.Sample{Coordinate: c, Timestamp: ts})
	}
}
