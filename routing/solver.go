// Package routing resolves coordinates onto a road network and computes
// minimum-weight paths between them.
//
// Solver is the pure search step: snap both endpoints with
// network.Graph.FindNearestNode, run dijkstra by routing weight, and
// reconstruct the node, edge and coordinate sequence. Reported distances are
// raw edge lengths; the road-type multiplier only biases the search.
//
// Planner wraps a Solver with a per-vehicle-class graph cache and instruction
// generation, producing route.Route values.
package routing

import (
	"context"
	"fmt"

	"github.com/katalvlaran/trailnav/dijkstra"
	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/network"
)

// DefaultSearchRadius is the endpoint snapping radius in meters.
const DefaultSearchRadius = 50.0

// Path is a solved node path.
type Path struct {
	Nodes          []string
	Edges          []network.Edge
	Coordinates    []geo.Coordinate
	DistanceMeters float64
	Weight         float64
}

// Names returns the way name of each edge, in traversal order.
func (p Path) Names() []string {
	names := make([]string, len(p.Edges))
	for i, e := range p.Edges {
		names[i] = e.Name
	}
	return names
}

// Solver computes shortest paths over a network.Graph.
type Solver struct {
	// SearchRadius bounds endpoint snapping in meters; zero means DefaultSearchRadius.
	SearchRadius float64
}

// Solve returns the minimum-weight path from start to end.
//
// Errors carry a Code (see CodeOf): invalid coordinates yield ROUTING_ERROR,
// unresolved endpoints NO_NEARBY_NODES, disconnected endpoints NO_PATH_FOUND.
// Context cancellation is reported as ROUTING_ERROR wrapping ctx.Err().
func (s Solver) Solve(ctx context.Context, g *network.Graph, start, end geo.Coordinate) (Path, error) {
	if err := start.Validate(); err != nil {
		return Path{}, newError(CodeRoutingError, fmt.Errorf("start: %w", err))
	}
	if err := end.Validate(); err != nil {
		return Path{}, newError(CodeRoutingError, fmt.Errorf("end: %w", err))
	}
	if g == nil {
		return Path{}, newError(CodeNoNearbyNodes, ErrNoNearbyNodes)
	}

	radius := s.SearchRadius
	if radius <= 0 {
		radius = DefaultSearchRadius
	}

	from, _, ok := g.FindNearestNode(start, radius)
	if !ok {
		return Path{}, newError(CodeNoNearbyNodes, fmt.Errorf("%w: start %s", ErrNoNearbyNodes, start))
	}
	to, _, ok := g.FindNearestNode(end, radius)
	if !ok {
		return Path{}, newError(CodeNoNearbyNodes, fmt.Errorf("%w: end %s", ErrNoNearbyNodes, end))
	}

	dist, prev, err := dijkstra.Dijkstra(g,
		dijkstra.Source(from.ID),
		dijkstra.Target(to.ID),
		dijkstra.WithReturnPath(),
		dijkstra.WithContext(ctx),
	)
	if err != nil {
		return Path{}, newError(CodeRoutingError, err)
	}

	nodes := dijkstra.PathTo(prev, from.ID, to.ID)
	if nodes == nil {
		return Path{}, newError(CodeNoPathFound, fmt.Errorf("%w: %s → %s", ErrNoPathFound, from.ID, to.ID))
	}

	return assemble(g, nodes, dist[to.ID])
}

// assemble converts a node sequence into a Path, summing raw edge distances.
func assemble(g *network.Graph, nodes []string, weight float64) (Path, error) {
	p := Path{
		Nodes:       nodes,
		Edges:       make([]network.Edge, 0, len(nodes)-1),
		Coordinates: make([]geo.Coordinate, 0, len(nodes)),
		Weight:      weight,
	}
	for i, id := range nodes {
		n, err := g.Node(id)
		if err != nil {
			return Path{}, newError(CodeRoutingError, err)
		}
		p.Coordinates = append(p.Coordinates, n.Coordinate)
		if i == 0 {
			continue
		}
		e, err := g.EdgeBetween(nodes[i-1], id)
		if err != nil {
			return Path{}, newError(CodeRoutingError, err)
		}
		p.Edges = append(p.Edges, *e)
		p.DistanceMeters += e.Distance
	}
	return p, nil
}
