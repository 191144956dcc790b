package network

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/katalvlaran/trailnav/geo"
)

// LoadGeoJSON decodes a GeoJSON FeatureCollection into line features.
// LineString and MultiLineString geometries are kept (each part of a
// MultiLineString becomes its own Feature); other geometry types are ignored.
// Properties are flattened to string tags.
func LoadGeoJSON(data []byte) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("network: decode geojson: %w", err)
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		tags := tagsFromProperties(f.Properties)
		switch g := f.Geometry.(type) {
		case orb.LineString:
			features = append(features, Feature{Coordinates: geo.FromLineString(g), Tags: tags})
		case orb.MultiLineString:
			for _, part := range g {
				features = append(features, Feature{Coordinates: geo.FromLineString(part), Tags: tags})
			}
		}
	}

	return features, nil
}

// LoadGeoJSONFile reads path and decodes it with LoadGeoJSON.
func LoadGeoJSONFile(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("network: read %s: %w", path, err)
	}
	return LoadGeoJSON(data)
}

func tagsFromProperties(props geojson.Properties) map[string]string {
	tags := make(map[string]string, len(props))
	for k, raw := range props {
		switch v := raw.(type) {
		case nil:
		case string:
			tags[k] = v
		case bool:
			tags[k] = strconv.FormatBool(v)
		case float64:
			tags[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			tags[k] = fmt.Sprint(v)
		}
	}
	return tags
}
