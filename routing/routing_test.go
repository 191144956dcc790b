package routing_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/metrics"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/routing"
)

const metersPerDegree = geo.EarthRadius * math.Pi / 180

// at returns a coordinate north/east meters from a mid-latitude origin.
func at(north, east float64) geo.Coordinate {
	lat := 45.0 + north/metersPerDegree
	return geo.Coordinate{Lat: lat, Lng: 6.0 + east/(metersPerDegree*math.Cos(45*math.Pi/180))}
}

func line(rt network.RoadType, name string, pts ...geo.Coordinate) network.Feature {
	return network.Feature{Coordinates: pts, Tags: map[string]string{"road_type": string(rt), "name": name}}
}

func TestSolve_CyclingUsesRoadOverEqualFootway(t *testing.T) {
	a, b := at(0, 0), at(50, 0)
	features := []network.Feature{
		line(network.Footway, "Dune Path", a, b),
		line(network.Road, "Camp Road", a, b),
	}

	for _, class := range []network.VehicleClass{network.Cycling, network.Walking} {
		g := network.Build(features, class)
		p, err := routing.Solver{}.Solve(context.Background(), g, a, b)
		require.NoError(t, err, class)
		require.Len(t, p.Edges, 1)
		assert.Equal(t, network.Road, p.Edges[0].RoadType, class)
		assert.Equal(t, []string{"Camp Road"}, p.Names())
		assert.InDelta(t, 50, p.DistanceMeters, 0.25)
	}
}

func TestSolve_ReportsRawDistance(t *testing.T) {
	features := []network.Feature{line(network.Road, "", at(0, 0), at(60, 0), at(60, 40))}
	g := network.Build(features, network.Driving)

	p, err := routing.Solver{}.Solve(context.Background(), g, at(1, 1), at(59, 41))
	require.NoError(t, err)

	assert.Len(t, p.Coordinates, 3)
	assert.InDelta(t, 100, p.DistanceMeters, 0.5)
	assert.InDelta(t, 80, p.Weight, 0.5)
}

func TestSolve_Errors(t *testing.T) {
	trail := line(network.Footway, "", at(0, 0), at(100, 0))
	island := line(network.Road, "", at(500, 500), at(600, 500))
	ctx := context.Background()

	empty := network.Build([]network.Feature{trail}, network.Driving)
	_, err := routing.Solver{}.Solve(ctx, empty, at(0, 0), at(100, 0))
	assert.ErrorIs(t, err, routing.ErrNoNearbyNodes)
	assert.Equal(t, routing.CodeNoNearbyNodes, routing.CodeOf(err))

	g := network.Build([]network.Feature{trail, island}, network.Walking)
	_, err = routing.Solver{}.Solve(ctx, g, at(0, 0), at(600, 500))
	assert.ErrorIs(t, err, routing.ErrNoPathFound)
	assert.Equal(t, routing.CodeNoPathFound, routing.CodeOf(err))

	_, err = routing.Solver{SearchRadius: 10}.Solve(ctx, g, at(0, 30), at(100, 0))
	assert.Equal(t, routing.CodeNoNearbyNodes, routing.CodeOf(err))

	_, err = routing.Solver{}.Solve(ctx, g, geo.Coordinate{Lat: 91}, at(100, 0))
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
	assert.Equal(t, routing.CodeRoutingError, routing.CodeOf(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = routing.Solver{}.Solve(cancelled, g, at(0, 0), at(100, 0))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, routing.CodeRoutingError, routing.CodeOf(err))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, routing.Code(""), routing.CodeOf(nil))
	assert.Equal(t, routing.CodeNoPathFound, routing.CodeOf(fmt.Errorf("wrapped: %w", routing.ErrNoPathFound)))
	assert.Equal(t, routing.CodeRoutingError, routing.CodeOf(errors.New("other")))
	assert.Equal(t, "NO_NEARBY_NODES", (&routing.Error{Code: routing.CodeNoNearbyNodes}).Error())
}

func TestPlanner_PlansAndCachesGraph(t *testing.T) {
	features := []network.Feature{
		line(network.Road, "Camp Road", at(0, 0), at(80, 0)),
		line(network.Road, "Lake Lane", at(80, 0), at(80, 60)),
		line(network.Footway, "Beach Path", at(80, 60), at(80, 120)),
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	p := routing.NewPlanner(features, routing.WithMetrics(m), routing.WithSearchRadius(20))

	r, err := p.Plan(context.Background(), at(0, 0), at(80, 60), network.Driving)
	require.NoError(t, err)

	assert.Equal(t, route.MethodGraph, r.Method)
	assert.Equal(t, network.Driving, r.Class)
	assert.InDelta(t, 140, r.DistanceMeters, 0.5)
	assert.InDelta(t, 140/(15/3.6), r.DurationSeconds, 0.5)
	require.Len(t, r.Instructions, 2)
	assert.Equal(t, route.TurnRight, r.Instructions[0].Maneuver)
	assert.Equal(t, "Lake Lane", r.Instructions[0].Name)
	assert.Equal(t, route.Arrive, r.Instructions[1].Maneuver)

	assert.Same(t, p.Graph(network.Driving), p.Graph(network.Driving))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.GraphNodes.WithLabelValues("driving")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutesPlanned.WithLabelValues("graph", "ok")))

	_, err = p.Plan(context.Background(), at(0, 0), at(80, 120), network.Driving)
	assert.Equal(t, routing.CodeNoNearbyNodes, routing.CodeOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutesPlanned.WithLabelValues("graph", "NO_NEARBY_NODES")))
}

func TestWithSearchRadius_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { routing.WithSearchRadius(0) })
}
