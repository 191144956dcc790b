package tracking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/speed"
)

// Session is one navigation run over a single route. A reroute replaces the
// whole Session; nothing is patched across routes.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu        sync.Mutex
	tracker   *Tracker
	estimator *speed.Estimator
}

// NewSession starts a session over r. A nil estimator starts a fresh one;
// passing the previous session's estimator keeps speed history across a
// reroute.
func NewSession(r route.Route, est *speed.Estimator, opts ...Option) *Session {
	if est == nil {
		est = speed.New()
	}
	return &Session{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		tracker:   NewTracker(r, opts...),
		estimator: est,
	}
}

// Route returns the session's route.
func (s *Session) Route() route.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Route()
}

// Estimator returns the session's speed estimator.
func (s *Session) Estimator() *speed.Estimator { return s.estimator }

// State returns the tracker state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.State()
}

// Last returns the latest progress.
func (s *Session) Last() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Last()
}

// Update feeds sample to the estimator and the tracker and fills speed and
// ETA into the progress. class selects the ETA speed; pass "" to use live
// speed.
func (s *Session) Update(sample speed.Sample, class network.VehicleClass) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker.State() != StateCompleted {
		s.estimator.Add(sample)
	}
	u := s.tracker.Update(sample.Coordinate)
	u.SpeedKmh = s.estimator.CurrentSpeedKmh()
	u.ETA = s.estimator.DynamicETA(u.DistanceRemaining, class)
	return u
}
