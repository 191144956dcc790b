// Package metrics bundles the Prometheus metrics exported by trailnav.
//
// All recording methods are safe on a nil *Collector, so components can take
// an optional collector without guarding every call.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reroute outcomes.
const (
	RerouteApplied = "applied"
	RerouteFailed  = "failed"
	RerouteStale   = "stale"
	RerouteDropped = "dropped"
)

// Collector holds the registered metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	RoutesPlanned   *prometheus.CounterVec
	PlanDuration    *prometheus.HistogramVec
	GraphNodes      *prometheus.GaugeVec
	GraphEdges      *prometheus.GaugeVec
	PositionUpdates prometheus.Counter
	OffRouteSamples prometheus.Counter
	Reroutes        *prometheus.CounterVec
	Completions     prometheus.Counter
	ActiveSessions  prometheus.Gauge
}

// New registers the metrics against reg, defaulting to the global Prometheus
// registry when nil. Registering twice on the same registry reuses the
// existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.RoutesPlanned, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trailnav_routes_planned_total",
		Help: "Route requests, labeled by planning method and result code.",
	}, []string{"method", "result"})); err != nil {
		return nil, err
	}
	if c.PlanDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trailnav_plan_duration_seconds",
		Help:    "Route planning latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method"})); err != nil {
		return nil, err
	}
	if c.GraphNodes, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trailnav_graph_nodes",
		Help: "Nodes in the cached road graph per vehicle class.",
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if c.GraphEdges, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trailnav_graph_edges",
		Help: "Edges in the cached road graph per vehicle class.",
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if c.PositionUpdates, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailnav_position_updates_total",
		Help: "Position samples applied to tracking sessions.",
	})); err != nil {
		return nil, err
	}
	if c.OffRouteSamples, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailnav_off_route_samples_total",
		Help: "Position samples farther than the off-route threshold from the route.",
	})); err != nil {
		return nil, err
	}
	if c.Reroutes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trailnav_reroutes_total",
		Help: "Reroute attempts, labeled by outcome (applied, failed, stale, dropped).",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if c.Completions, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trailnav_routes_completed_total",
		Help: "Routes that reached the destination.",
	})); err != nil {
		return nil, err
	}
	if c.ActiveSessions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trailnav_active_sessions",
		Help: "Tracking sessions currently active.",
	})); err != nil {
		return nil, err
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObservePlan records one planning attempt.
func (c *Collector) ObservePlan(method, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.RoutesPlanned.WithLabelValues(method, result).Inc()
	c.PlanDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SetGraphSize records the size of the graph built for class.
func (c *Collector) SetGraphSize(class string, nodes, edges int) {
	if c == nil {
		return
	}
	c.GraphNodes.WithLabelValues(class).Set(float64(nodes))
	c.GraphEdges.WithLabelValues(class).Set(float64(edges))
}

// PositionUpdate counts one tracked sample.
func (c *Collector) PositionUpdate(offRoute bool) {
	if c == nil {
		return
	}
	c.PositionUpdates.Inc()
	if offRoute {
		c.OffRouteSamples.Inc()
	}
}

// Reroute counts one reroute outcome.
func (c *Collector) Reroute(result string) {
	if c == nil {
		return
	}
	c.Reroutes.WithLabelValues(result).Inc()
}

// Completed counts one arrival.
func (c *Collector) Completed() {
	if c == nil {
		return
	}
	c.Completions.Inc()
}

// SessionStarted and SessionEnded track the active session gauge.
func (c *Collector) SessionStarted() {
	if c == nil {
		return
	}
	c.ActiveSessions.Inc()
}

func (c *Collector) SessionEnded() {
	if c == nil {
		return
	}
	c.ActiveSessions.Dec()
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("metrics: collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return col, nil
}
