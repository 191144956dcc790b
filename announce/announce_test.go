package announce_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/trailnav/announce"
	"github.com/katalvlaran/trailnav/geo"
)

func TestShouldAnnounce(t *testing.T) {
	p := announce.DefaultPolicy()

	tests := []struct {
		name    string
		changed bool
		moved   float64
		since   time.Duration
		want    bool
	}{
		{"new step", true, 0, 0, true},
		{"repeat too soon", false, 50, 5 * time.Second, false},
		{"repeat too close", false, 10, time.Minute, false},
		{"repeat after both", false, 30, 20 * time.Second, true},
		{"forced after silence", false, 0, 2 * time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, announce.ShouldAnnounce(tt.changed, tt.moved, tt.since, p))
		})
	}
}

type spoken struct {
	text     string
	priority announce.Priority
}

func TestAnnouncer_GatesRepeats(t *testing.T) {
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	var got []spoken
	sink := announce.SinkFunc(func(text string, p announce.Priority) { got = append(got, spoken{text, p}) })
	a := announce.NewAnnouncer(sink, announce.WithClock(func() time.Time { return now }))

	north := func(m float64) geo.Coordinate { return geo.Coordinate{Lat: m / (geo.EarthRadius * math.Pi / 180)} }

	assert.True(t, a.Offer("step:0", "Head north", north(0), announce.PriorityNormal))
	now = now.Add(5 * time.Second)
	assert.False(t, a.Offer("step:0", "Head north", north(40), announce.PriorityNormal))
	assert.True(t, a.Offer("off-route", "You are off route", north(40), announce.PriorityHigh))
	now = now.Add(25 * time.Second)
	assert.True(t, a.Offer("off-route", "You are off route", north(75), announce.PriorityHigh))

	assert.Equal(t, []spoken{
		{"Head north", announce.PriorityNormal},
		{"You are off route", announce.PriorityHigh},
		{"You are off route", announce.PriorityHigh},
	}, got)
}

func TestAnnouncer_NilSink(t *testing.T) {
	assert.True(t, announce.NewAnnouncer(nil).Offer("k", "text", geo.Coordinate{}, announce.PriorityLow))
	assert.Equal(t, "high", announce.PriorityHigh.String())
}
