package tracking_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/instruction"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

const metersPerDegree = geo.EarthRadius * math.Pi / 180

func at(north, east float64) geo.Coordinate {
	return geo.Coordinate{Lat: north / metersPerDegree, Lng: east / metersPerDegree}
}

func makeRoute(path ...geo.Coordinate) route.Route {
	return route.Route{
		Geometry:       path,
		Instructions:   instruction.NewGenerator().Generate(path, nil, network.Walking),
		DistanceMeters: geo.PathLength(path),
		Class:          network.Walking,
		Method:         route.MethodGraph,
	}
}

// elbow is 100 m north then 100 m east: [turn-right@1, arrive@2].
func elbow() route.Route { return makeRoute(at(0, 0), at(100, 0), at(100, 100)) }

func TestTracker_ProgressAlongRoute(t *testing.T) {
	tr := tracking.NewTracker(elbow())

	u := tr.Update(at(0, 0))
	assert.Empty(t, u.Events)
	assert.Equal(t, tracking.StateTracking, u.State)
	assert.InDelta(t, 200, u.DistanceRemaining, 0.5)
	assert.InDelta(t, 0, u.PercentComplete, 0.5)
	assert.InDelta(t, 200, u.DistanceToNext, 0.5)

	u = tr.Update(at(50, 1))
	assert.False(t, u.IsOffRoute)
	assert.Equal(t, 0, u.SegmentIndex)
	assert.InDelta(t, 150, u.DistanceRemaining, 0.5)
	assert.InDelta(t, 25, u.PercentComplete, 0.5)
	assert.InDelta(t, 50, u.DistanceCompleted, 0.5)

	u = tr.Update(at(101, 60))
	assert.Equal(t, 1, u.SegmentIndex)
	assert.InDelta(t, 40, u.DistanceRemaining, 0.5)
}

func TestTracker_OffRouteCounterResets(t *testing.T) {
	tr := tracking.NewTracker(elbow())

	u := tr.Update(at(50, 10))
	require.True(t, u.IsOffRoute)
	assert.Equal(t, tracking.StateOffRoute, u.State)
	assert.Equal(t, 1, u.OffRouteCount)
	require.True(t, u.Has(tracking.EventOffRoute))
	assert.InDelta(t, 10, u.Events[0].DistanceMeters, 0.1)

	u = tr.Update(at(60, 12))
	assert.Equal(t, 2, u.OffRouteCount)
	assert.True(t, u.Has(tracking.EventOffRoute), "every off-route sample notifies")

	u = tr.Update(at(70, 4))
	assert.False(t, u.IsOffRoute)
	assert.Equal(t, 0, u.OffRouteCount)
	assert.Equal(t, tracking.StateTracking, u.State)
	assert.Empty(t, u.Events)

	u = tr.Update(at(80, 30))
	assert.Equal(t, 1, u.OffRouteCount)
}

func TestTracker_StepAdvanceAndSingleCompletion(t *testing.T) {
	tr := tracking.NewTracker(elbow())

	u := tr.Update(at(100, 80))
	assert.Equal(t, 0, u.StepIndex, "20 m from the arrival point")

	u = tr.Update(at(100, 90))
	require.True(t, u.Has(tracking.EventStepChanged))
	assert.Equal(t, 1, u.StepIndex)
	assert.False(t, u.Has(tracking.EventCompleted), "10 m is outside the arrival radius")

	u = tr.Update(at(100, 95))
	require.True(t, u.Has(tracking.EventCompleted))
	assert.Equal(t, tracking.StateCompleted, u.State)
	assert.Equal(t, 100.0, u.PercentComplete)
	assert.Zero(t, u.DistanceRemaining)

	for _, c := range []geo.Coordinate{at(100, 99), at(0, 0), at(100, 100)} {
		u = tr.Update(c)
		assert.Empty(t, u.Events)
		assert.Equal(t, 1, u.StepIndex)
		assert.Equal(t, tracking.StateCompleted, u.State)
	}
}

func TestTracker_CompletionNeedsLastStep(t *testing.T) {
	// A loop ending 5 m from its start.
	loop := makeRoute(at(0, 0), at(60, 0), at(60, 60), at(0, 60), at(0, 5))
	require.Greater(t, len(loop.Instructions), 2)

	tr := tracking.NewTracker(loop)
	u := tr.Update(at(0, 0))

	assert.Empty(t, u.Events)
	assert.Equal(t, tracking.StateTracking, u.State)
	assert.Equal(t, 0, u.StepIndex)
}

func TestTracker_StepNeverDecreases(t *testing.T) {
	tr := tracking.NewTracker(makeRoute(at(0, 0), at(60, 0), at(60, 60), at(120, 60)))

	tr.Update(at(60, 50))
	step := tr.Step()
	require.Equal(t, 1, step)

	tr.Update(at(0, 0))
	assert.Equal(t, step, tr.Step())
}

func TestTracker_DegenerateGeometry(t *testing.T) {
	for _, r := range []route.Route{{}, makeRoute(at(1, 1))} {
		u := tracking.NewTracker(r).Update(at(1, 1))
		assert.Empty(t, u.Events)
		assert.Equal(t, tracking.Progress{State: tracking.StateTracking}, u.Progress)
	}
}

func TestTracker_IgnoresInvalidCoordinate(t *testing.T) {
	tr := tracking.NewTracker(elbow())
	first := tr.Update(at(10, 0))

	u := tr.Update(geo.Coordinate{Lat: math.NaN()})
	assert.Empty(t, u.Events)
	assert.Equal(t, first.Progress, u.Progress)
}

func TestOptions_PanicOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { tracking.WithOffRouteThreshold(0) })
	assert.Panics(t, func() { tracking.WithStepAdvanceThreshold(-1) })
	assert.Panics(t, func() { tracking.WithCompleteThreshold(math.NaN()) })
}

func TestSession_UpdateFillsSpeedAndETA(t *testing.T) {
	start := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	est := speed.New(speed.WithClock(func() time.Time { return start }))
	s := tracking.NewSession(elbow(), est)
	assert.NotEqual(t, uuid.Nil, s.ID)

	var u tracking.Update
	for i := 0; i < 6; i++ {
		u = s.Update(speed.Sample{Coordinate: at(float64(2*i), 0), Timestamp: start.Add(time.Duration(i) * time.Second)}, "")
	}

	assert.InDelta(t, 7.2, u.SpeedKmh, 0.72)
	assert.Equal(t, speed.SourceCurrent, u.ETA.Source)
	assert.InDelta(t, 190, u.ETA.DistanceMeters, 0.5)

	u = s.Update(speed.Sample{Coordinate: at(12, 0), Timestamp: start.Add(6 * time.Second)}, network.Walking)
	assert.Equal(t, speed.SourceNominal, u.ETA.Source)
	assert.InDelta(t, 188, u.ETA.Remaining.Seconds(), 1)
	assert.Same(t, est, s.Estimator())
	assert.Equal(t, 7, est.Len())
}
