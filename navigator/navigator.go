// Package navigator drives one navigation at a time: it plans the initial
// route, feeds position samples to the active tracking session, dispatches
// notifications, and recomputes the route in the background when the agent
// strays.
//
// Position updates are synchronous and never wait for a reroute. A reroute
// runs on its own goroutine under the reroute.Controller guard, always
// targets the original destination, and is applied only if no Start or Stop
// happened since it was launched; stale results are discarded. A successful
// reroute replaces the tracking session wholesale, keeping the speed
// estimator. A failed one leaves the current route in place.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/trailnav/announce"
	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/locale"
	"github.com/katalvlaran/trailnav/logging"
	"github.com/katalvlaran/trailnav/metrics"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/reroute"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

var (
	// ErrNotStarted indicates that no navigation is active.
	ErrNotStarted = errors.New("navigator: navigation not started")

	// ErrNilPlanner indicates that New was given no planner.
	ErrNilPlanner = errors.New("navigator: planner is nil")
)

// Navigator is safe for concurrent use.
type Navigator struct {
	opts       Options
	planner    reroute.Planner
	controller *reroute.Controller
	wg         sync.WaitGroup

	mu      sync.Mutex
	session *tracking.Session
	dest    geo.Coordinate
	class   network.VehicleClass
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
}

// New returns a Navigator planning with planner.
func New(planner reroute.Planner, opts ...Option) (*Navigator, error) {
	if planner == nil {
		return nil, ErrNilPlanner
	}
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Listener == nil {
		cfg.Listener = NopListener{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}
	if cfg.Translator == nil {
		cfg.Translator = locale.New("en")
	}

	return &Navigator{
		opts:       cfg,
		planner:    planner,
		controller: reroute.NewController(planner),
	}, nil
}

// Start plans from → to and makes it the active navigation, invalidating any
// reroute still in flight. On error the previous navigation, if any, stays
// active.
func (n *Navigator) Start(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	r, err := n.planner.Plan(ctx, from, to, class)
	if err != nil {
		n.opts.Logger.Warn(ctx, "navigation not started", logging.Err(err))
		return route.Route{}, fmt.Errorf("navigator: plan: %w", err)
	}

	sess := tracking.NewSession(r, speed.New(n.opts.Speed...), n.opts.Tracking...)
	runCtx, cancel := context.WithCancel(logging.ContextWithSessionID(context.WithoutCancel(ctx), sess.ID.String()))

	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	hadSession := n.session != nil
	n.session, n.dest, n.class = sess, to, class
	n.ctx, n.cancel = runCtx, cancel
	n.gen++
	n.mu.Unlock()

	if !hadSession {
		n.opts.Metrics.SessionStarted()
	}
	n.opts.Logger.Info(runCtx, "navigation started",
		logging.String("method", string(r.Method)),
		logging.String("class", string(class)),
		logging.Float("distance_m", r.DistanceMeters),
		logging.Int("steps", len(r.Instructions)),
	)
	if len(r.Instructions) > 0 {
		n.announce("step:0", r.Instructions[0].Text, from, announce.PriorityNormal)
	}
	return r, nil
}

// Stop ends the active navigation and invalidates in-flight reroutes.
func (n *Navigator) Stop() {
	n.mu.Lock()
	hadSession := n.session != nil
	if n.cancel != nil {
		n.cancel()
	}
	n.session, n.ctx, n.cancel = nil, nil, nil
	n.gen++
	n.mu.Unlock()

	if hadSession {
		n.opts.Metrics.SessionEnded()
	}
}

// Wait blocks until background reroutes have finished.
func (n *Navigator) Wait() { n.wg.Wait() }

// Session returns the active tracking session, or nil.
func (n *Navigator) Session() *tracking.Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.session
}

// Route returns the active route.
func (n *Navigator) Route() (route.Route, bool) {
	s := n.Session()
	if s == nil {
		return route.Route{}, false
	}
	return s.Route(), true
}

// UpdatePosition applies one sample to the active session, dispatches its
// notifications and, when the reroute policy fires, launches a background
// reroute from the sample's position. The ETA uses the mode set by
// WithETAMode, live speed by default.
func (n *Navigator) UpdatePosition(s speed.Sample) (tracking.Update, error) {
	return n.UpdatePositionMode(s, n.opts.ETAMode)
}

// UpdatePositionMode is UpdatePosition with the ETA computed at mode's
// nominal speed. An empty mode uses the live current or average speed.
// Routing always keeps the class given to Start.
func (n *Navigator) UpdatePositionMode(s speed.Sample, mode network.VehicleClass) (tracking.Update, error) {
	n.mu.Lock()
	sess, gen, ctx := n.session, n.gen, n.ctx
	n.mu.Unlock()
	if sess == nil {
		return tracking.Update{}, ErrNotStarted
	}

	u := sess.Update(s, mode)
	n.opts.Metrics.PositionUpdate(u.IsOffRoute)
	n.dispatch(ctx, sess, s.Coordinate, u)

	// A completed session is terminal: it keeps its last off-route
	// snapshot but never reroutes.
	if u.State == tracking.StateCompleted {
		return u, nil
	}
	if u.IsOffRoute && n.opts.Policy.ShouldReroute(u.OffRouteDistance, u.OffRouteCount) {
		n.launchReroute(ctx, gen, s.Coordinate)
	}
	return u, nil
}

func (n *Navigator) dispatch(ctx context.Context, sess *tracking.Session, pos geo.Coordinate, u tracking.Update) {
	tr := n.opts.Translator
	l := n.opts.Listener

	for _, e := range u.Events {
		switch e.Kind {
		case tracking.EventStepChanged:
			steps := sess.Route().Instructions
			if e.StepIndex < 0 || e.StepIndex >= len(steps) {
				continue
			}
			in := steps[e.StepIndex]
			l.OnStepChanged(e.StepIndex, in)
			n.announce(fmt.Sprintf("step:%d", e.StepIndex), in.Text, pos, announce.PriorityNormal)
		case tracking.EventOffRoute:
			l.OnOffRoute(e.DistanceMeters, u.OffRouteCount)
			n.announce("off-route", tr.Sprintf(locale.KeyOffRoute), pos, announce.PriorityHigh)
		case tracking.EventCompleted:
			n.opts.Metrics.Completed()
			n.opts.Logger.Info(ctx, "route completed")
			l.OnRouteCompleted()
			// Same key as the arrival step, so it is not spoken twice.
			n.announce(fmt.Sprintf("step:%d", u.StepIndex), tr.Sprintf(locale.KeyArrive), pos, announce.PriorityHigh)
		}
	}
}

func (n *Navigator) launchReroute(ctx context.Context, gen uint64, from geo.Coordinate) {
	if !n.controller.TryBegin() {
		n.opts.Metrics.Reroute(metrics.RerouteDropped)
		return
	}

	n.mu.Lock()
	dest, class := n.dest, n.class
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer n.controller.End()

		n.opts.Logger.Info(ctx, "rerouting", logging.String("from", from.String()))
		r, err := n.controller.Plan(ctx, from, dest, class)
		n.applyReroute(ctx, gen, from, r, err)
	}()
}

func (n *Navigator) applyReroute(ctx context.Context, gen uint64, from geo.Coordinate, r route.Route, err error) {
	n.mu.Lock()
	if gen != n.gen || n.session == nil || n.session.State() == tracking.StateCompleted {
		n.mu.Unlock()
		n.opts.Metrics.Reroute(metrics.RerouteStale)
		n.opts.Logger.Debug(ctx, "stale reroute discarded")
		return
	}
	if err != nil {
		n.mu.Unlock()
		n.opts.Metrics.Reroute(metrics.RerouteFailed)
		n.opts.Logger.Warn(ctx, "reroute failed, keeping current route", logging.Err(err))
		n.opts.Listener.OnRerouteFailed(err)
		return
	}
	n.session = tracking.NewSession(r, n.session.Estimator(), n.opts.Tracking...)
	n.gen++
	n.mu.Unlock()

	n.opts.Metrics.Reroute(metrics.RerouteApplied)
	n.opts.Logger.Info(ctx, "route replaced",
		logging.String("method", string(r.Method)),
		logging.Float("distance_m", r.DistanceMeters),
	)
	n.opts.Listener.OnRouteReplaced(r)
	n.announce("route-replaced", n.opts.Translator.Sprintf(locale.KeyRouteReplaced), from, announce.PriorityNormal)
	if len(r.Instructions) > 0 {
		n.announce("step:0", r.Instructions[0].Text, from, announce.PriorityNormal)
	}
}

func (n *Navigator) announce(key, text string, pos geo.Coordinate, p announce.Priority) {
	if n.opts.Announcer == nil {
		return
	}
	n.opts.Announcer.Offer(key, text, pos, p)
}
