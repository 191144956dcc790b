package routing

import (
	"context"
	"sync"
	"time"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/instruction"
	"github.com/katalvlaran/trailnav/logging"
	"github.com/katalvlaran/trailnav/metrics"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
)

// PlannerOptions configures a Planner.
type PlannerOptions struct {
	Solver    Solver
	Generator *instruction.Generator
	Logger    logging.Logger
	Metrics   *metrics.Collector
}

// PlannerOption represents a functional option for configuring a Planner.
type PlannerOption func(*PlannerOptions)

// WithSearchRadius sets the endpoint snapping radius. Panics if r <= 0.
func WithSearchRadius(r float64) PlannerOption {
	if r <= 0 {
		panic("routing: search radius must be positive")
	}
	return func(o *PlannerOptions) {
		o.Solver.SearchRadius = r
	}
}

// WithGenerator sets the instruction generator.
func WithGenerator(g *instruction.Generator) PlannerOption {
	return func(o *PlannerOptions) {
		o.Generator = g
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) PlannerOption {
	return func(o *PlannerOptions) {
		o.Logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) PlannerOption {
	return func(o *PlannerOptions) {
		o.Metrics = m
	}
}

// Planner plans graph routes over a fixed set of line features. The graph for
// each vehicle class is built on first use and cached; Planner is safe for
// concurrent use.
type Planner struct {
	features []network.Feature
	opts     PlannerOptions

	mu     sync.Mutex
	graphs map[network.VehicleClass]*network.Graph
}

// NewPlanner returns a Planner over features.
func NewPlanner(features []network.Feature, opts ...PlannerOption) *Planner {
	cfg := PlannerOptions{Solver: Solver{SearchRadius: DefaultSearchRadius}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Generator == nil {
		cfg.Generator = instruction.NewGenerator()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}

	return &Planner{
		features: features,
		opts:     cfg,
		graphs:   make(map[network.VehicleClass]*network.Graph),
	}
}

// Graph returns the cached graph for class, building it if needed.
// Unspecified classes use the walking graph.
func (p *Planner) Graph(class network.VehicleClass) *network.Graph {
	if class == "" {
		class = network.Walking
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.graphs[class]; ok {
		return g
	}

	g := network.Build(p.features, class)
	st := g.Stats()
	p.graphs[class] = g
	p.opts.Metrics.SetGraphSize(string(class), st.Nodes, st.Edges)
	p.opts.Logger.Info(context.Background(), "road graph built",
		logging.String("class", string(class)),
		logging.Int("nodes", st.Nodes),
		logging.Int("edges", st.Edges),
		logging.Int("features_accepted", st.FeaturesAccepted),
		logging.Int("features_filtered", st.FeaturesFiltered),
		logging.Int("features_invalid", st.FeaturesInvalid),
	)
	return g
}

// Plan computes a graph route from → to for class.
func (p *Planner) Plan(ctx context.Context, from, to geo.Coordinate, class network.VehicleClass) (route.Route, error) {
	if class == "" {
		class = network.Walking
	}
	start := time.Now()

	path, err := p.opts.Solver.Solve(ctx, p.Graph(class), from, to)
	p.opts.Metrics.ObservePlan(string(route.MethodGraph), resultLabel(err), time.Since(start))
	if err != nil {
		p.opts.Logger.Warn(ctx, "route planning failed",
			logging.String("class", string(class)),
			logging.String("code", string(CodeOf(err))),
			logging.Err(err),
		)
		return route.Route{}, err
	}

	r := route.Route{
		Geometry:        path.Coordinates,
		Instructions:    p.opts.Generator.Generate(path.Coordinates, path.Names(), class),
		DistanceMeters:  path.DistanceMeters,
		DurationSeconds: instruction.Duration(path.DistanceMeters, class),
		Class:           class,
		Method:          route.MethodGraph,
	}

	p.opts.Logger.Debug(ctx, "route planned",
		logging.String("class", string(class)),
		logging.Int("nodes", len(path.Nodes)),
		logging.Float("distance_m", path.DistanceMeters),
		logging.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(CodeOf(err))
}
