package network_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
)

const metersPerDegree = geo.EarthRadius * math.Pi / 180

// at returns the coordinate north/east meters away from a fixed campsite origin.
func at(north, east float64) geo.Coordinate {
	return geo.Coordinate{Lat: 44.0 + north/metersPerDegree, Lng: 5.0 + east/(metersPerDegree*math.Cos(44.0*math.Pi/180))}
}

func line(roadType network.RoadType, name string, pts ...geo.Coordinate) network.Feature {
	tags := map[string]string{"road_type": string(roadType)}
	if name != "" {
		tags["name"] = name
	}
	return network.Feature{Coordinates: pts, Tags: tags}
}

func TestClassify_OrderedRules(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want network.RoadType
	}{
		{"explicit", map[string]string{"road_type": "cycleway", "highway": "primary"}, network.Cycleway},
		{"residential", map[string]string{"highway": "residential"}, network.Road},
		{"service", map[string]string{"highway": "track", "service": "driveway"}, network.Road},
		{"paved untyped", map[string]string{"surface": "asphalt"}, network.Road},
		{"footway", map[string]string{"highway": "footway", "surface": "paved"}, network.Footway},
		{"steps", map[string]string{"highway": "steps"}, network.Footway},
		{"trail by name", map[string]string{"name": "Lakeside Trail"}, network.Footway},
		{"cycleway", map[string]string{"highway": "cycleway"}, network.Cycleway},
		{"bike designated", map[string]string{"bicycle": "designated"}, network.Cycleway},
		{"bike path by name", map[string]string{"name": "Bike Path"}, network.Cycleway},
		{"cycle trail by name", map[string]string{"name": "Riverside Cycle Trail"}, network.Cycleway},
		{"footway tag beats cycle name", map[string]string{"highway": "footway", "name": "Bike Park Walk"}, network.Footway},
		{"arterial name", map[string]string{"name": "Camp Road"}, network.Road},
		{"unknown", map[string]string{"highway": "track"}, network.Mixed},
		{"empty", nil, network.Mixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, network.Classify(tt.tags))
		})
	}
}

func TestVehicleClass_Accepts(t *testing.T) {
	all := []network.RoadType{network.Road, network.Footway, network.Cycleway, network.Mixed}
	want := map[network.VehicleClass][]network.RoadType{
		network.Driving: {network.Road, network.Mixed},
		network.Cycling: {network.Road, network.Cycleway, network.Mixed},
		network.Walking: all,
	}
	for class, accepted := range want {
		for _, rt := range all {
			assert.Equal(t, contains(accepted, rt), class.Accepts(rt), "%s on %s", class, rt)
		}
	}
}

func TestParseVehicleClass(t *testing.T) {
	for in, want := range map[string]network.VehicleClass{
		"walking": network.Walking, "Pedestrian": network.Walking,
		"bike": network.Cycling, "car": network.Driving, " driving ": network.Driving,
	} {
		got, err := network.ParseVehicleClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := network.ParseVehicleClass("hovercraft")
	assert.ErrorIs(t, err, network.ErrUnknownVehicleClass)
}

func TestBuild_FilteredGraphNeverHoldsInaccessibleEdges(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	types := []network.RoadType{network.Road, network.Footway, network.Cycleway, network.Mixed}

	var features []network.Feature
	for i := 0; i < 60; i++ {
		pts := make([]geo.Coordinate, 2+r.Intn(4))
		for j := range pts {
			pts[j] = at(float64(r.Intn(20))*10, float64(r.Intn(20))*10)
		}
		features = append(features, line(types[r.Intn(len(types))], "", pts...))
	}

	for _, class := range []network.VehicleClass{network.Walking, network.Cycling, network.Driving} {
		g := network.Build(features, class)
		for _, e := range g.Edges() {
			assert.True(t, class.Accepts(e.RoadType), "%s graph holds %s edge %s", class, e.RoadType, e.ID)
		}
	}
}

func TestBuild_DedupsSharedEndpoints(t *testing.T) {
	a, b, c := at(0, 0), geo.Coordinate{Lat: 44.0, Lng: 5.0006}, at(50, 50)
	// b is repeated with sub-centimetre noise in the second feature.
	bNoisy := geo.Coordinate{Lat: b.Lat + 1e-9, Lng: b.Lng - 1e-9}
	g := network.Build([]network.Feature{
		line(network.Road, "Camp Road", a, b),
		line(network.Footway, "Pine Walk", bNoisy, c),
	}, network.Walking)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	junction, err := g.Node(network.NodeID(b))
	require.NoError(t, err)
	assert.Equal(t, 2, junction.Degree)

	stats := g.Stats()
	assert.Equal(t, 2, stats.FeaturesAccepted)
	assert.Zero(t, stats.FeaturesFiltered)
}

func TestBuild_DuplicatePairKeepsCheaperEdge(t *testing.T) {
	a, b := at(0, 0), at(0, 50)
	for _, order := range [][]network.Feature{
		{line(network.Footway, "", a, b), line(network.Road, "Camp Road", a, b)},
		{line(network.Road, "Camp Road", a, b), line(network.Footway, "", b, a)},
	} {
		g := network.Build(order, network.Walking)
		require.Equal(t, 1, g.EdgeCount())

		e, err := g.EdgeBetween(network.NodeID(a), network.NodeID(b))
		require.NoError(t, err)
		assert.Equal(t, network.Road, e.RoadType)
		assert.Equal(t, "Camp Road", e.Name)
		assert.InDelta(t, e.Distance*0.8, e.Weight, 1e-9)
		assert.InDelta(t, 50, e.Distance, 0.25)
	}
}

func TestBuild_RejectsInvalidFeatures(t *testing.T) {
	g := network.Build([]network.Feature{
		line(network.Road, "", at(0, 0), geo.Coordinate{Lat: 95, Lng: 5}),
		line(network.Road, "", at(0, 0)),
		line(network.Road, "", at(0, 0), at(0, 10)),
	}, network.Driving)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, g.Stats().FeaturesInvalid)
}

func TestBuild_EmptyWhenClassFiltersEverything(t *testing.T) {
	g := network.Build([]network.Feature{
		line(network.Footway, "", at(0, 0), at(0, 30)),
		line(network.Cycleway, "", at(0, 30), at(0, 60)),
	}, network.Driving)

	assert.True(t, g.Empty())
	assert.Equal(t, 2, g.Stats().FeaturesFiltered)
	_, _, ok := g.FindNearestNode(at(0, 0), 50)
	assert.False(t, ok)
}

func TestFindNearestNode_PrefersJunctions(t *testing.T) {
	// A dead-end stub 4 m from the query and a 3-way junction 6 m away.
	stub := at(0, 4)
	junction := at(0, -6)
	g := network.Build([]network.Feature{
		line(network.Road, "", stub, at(0, 20)),
		line(network.Road, "", junction, at(30, -6)),
		line(network.Road, "", junction, at(-30, -6)),
		line(network.Road, "", junction, at(0, -40)),
	}, network.Driving)

	n, d, ok := g.FindNearestNode(at(0, 0), 50)
	require.True(t, ok)
	assert.Equal(t, network.NodeID(junction), n.ID)
	assert.InDelta(t, 6, d, 0.05)

	_, _, ok = g.FindNearestNode(at(500, 500), 50)
	assert.False(t, ok)
}

func TestLoadGeoJSON(t *testing.T) {
	data := []byte(`{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"highway": "footway", "name": "Dune Path", "lit": true, "width": 1.5},
	     "geometry": {"type": "LineString", "coordinates": [[5.0, 44.0], [5.0005, 44.0]]}},
	    {"type": "Feature", "properties": {"highway": "service"},
	     "geometry": {"type": "MultiLineString", "coordinates": [[[5.0, 44.0], [5.0, 44.0005]], [[5.0, 44.0005], [5.0005, 44.0005]]]}},
	    {"type": "Feature", "properties": {"amenity": "toilets"},
	     "geometry": {"type": "Point", "coordinates": [5.0001, 44.0001]}}
	  ]
	}`)

	features, err := network.LoadGeoJSON(data)
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, "Dune Path", features[0].Name())
	assert.Equal(t, "true", features[0].Tags["lit"])
	assert.Equal(t, "1.5", features[0].Tags["width"])
	assert.Equal(t, geo.Coordinate{Lat: 44.0, Lng: 5.0005}, features[0].Coordinates[1])
	assert.Equal(t, network.Footway, network.Classify(features[0].Tags))
	assert.Equal(t, network.Road, network.Classify(features[1].Tags))

	_, err = network.LoadGeoJSON([]byte(`{"type":`))
	assert.Error(t, err)
}

func contains(list []network.RoadType, rt network.RoadType) bool {
	for _, v := range list {
		if v == rt {
			return true
		}
	}
	return false
}
