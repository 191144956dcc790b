// File: graph.go
// Role: Node/edge storage and queries: AddNode/AddEdge/Node/Edge/EdgeBetween/Neighbors.
// Determinism:
//   - Nodes() and Edges() return values sorted by ID asc.
//   - Neighbors() returns edges sorted by neighbour ID asc.
//   - nextEdgeID() is monotonic ("e" + decimal).
// Concurrency:
//   - Node catalog under muNode, edges and adjacency under muEdgeAdj.

package network

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/katalvlaran/trailnav/geo"
)

// edgeIDPrefix yields stable human-readable IDs like "e1", "e2", ...
const edgeIDPrefix = 'e'

// Graph is the in-memory road network for one vehicle class.
type Graph struct {
	muNode    sync.RWMutex // guards nodes
	muEdgeAdj sync.RWMutex // guards edges and adjacency

	class VehicleClass
	stats Stats

	nextEdgeID uint64           // atomic edge ID generator
	nodes      map[string]*Node // node ID → Node
	edges      map[string]*Edge // edge ID → Edge

	// adjacency[from][to] = edge ID; mirrored for both directions.
	adjacency map[string]map[string]string
}

// NewGraph creates an empty graph for the given vehicle class.
// Complexity: O(1)
func NewGraph(class VehicleClass) *Graph {
	return &Graph{
		class:     class,
		nodes:     make(map[string]*Node),
		edges:     make(map[string]*Edge),
		adjacency: make(map[string]map[string]string),
	}
}

// Class returns the vehicle class the graph was built for.
func (g *Graph) Class() VehicleClass { return g.class }

// AddNode resolves the node for c, creating it if missing (idempotent).
// The coordinate of the first insert is kept.
// Complexity: O(1) amortized.
func (g *Graph) AddNode(c geo.Coordinate) *Node {
	id := NodeID(c)

	g.muNode.Lock()
	n, ok := g.nodes[id]
	if !ok {
		n = &Node{ID: id, Coordinate: c}
		g.nodes[id] = n
	}
	g.muNode.Unlock()

	if !ok {
		g.muEdgeAdj.Lock()
		if _, exists := g.adjacency[id]; !exists {
			g.adjacency[id] = make(map[string]string)
		}
		g.muEdgeAdj.Unlock()
	}

	return n
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, error) {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// AddEdge connects the nodes at a and b with an edge of road type t.
//
// Steps:
//  1. Resolve both endpoints (ErrLoopNotAllowed if they collapse to one node).
//  2. If the pair is already connected, keep whichever edge has the lower
//     weight; the existing edge ID is returned and nothing new is inserted.
//  3. Otherwise allocate an ID and link adjacency in both directions.
//
// Returns the ID of the edge connecting the pair and whether a new edge was inserted.
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(a, b geo.Coordinate, t RoadType, name string) (string, bool, error) {
	from := g.AddNode(a)
	to := g.AddNode(b)
	if from.ID == to.ID {
		return "", false, ErrLoopNotAllowed
	}

	dist := geo.Distance(from.Coordinate, to.Coordinate)
	weight := dist * t.Multiplier()

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	if eid, ok := g.adjacency[from.ID][to.ID]; ok {
		existing := g.edges[eid]
		if weight < existing.Weight {
			existing.RoadType = t
			existing.Name = name
			existing.Distance = dist
			existing.Weight = weight
		}
		return eid, false, nil
	}

	eid := nextEdgeID(g)
	g.edges[eid] = &Edge{
		ID:       eid,
		From:     from.ID,
		To:       to.ID,
		RoadType: t,
		Name:     name,
		Distance: dist,
		Weight:   weight,
	}
	g.adjacency[from.ID][to.ID] = eid
	g.adjacency[to.ID][from.ID] = eid

	return eid, true, nil
}

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id string) (*Edge, error) {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return nil, ErrEdgeNotFound
	}
	return e, nil
}

// EdgeBetween returns the edge connecting nodes u and v.
func (g *Graph) EdgeBetween(u, v string) (*Edge, error) {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	eid, ok := g.adjacency[u][v]
	if !ok {
		return nil, ErrEdgeNotFound
	}
	return g.edges[eid], nil
}

// Neighbors returns the edges incident to node id, sorted by neighbour ID.
// Complexity: O(d log d).
func (g *Graph) Neighbors(id string) ([]*Edge, error) {
	if !g.HasNode(id) {
		return nil, ErrNodeNotFound
	}

	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	inner := g.adjacency[id]
	ids := make([]string, 0, len(inner))
	for to := range inner {
		ids = append(ids, to)
	}
	sort.Strings(ids)

	out := make([]*Edge, 0, len(ids))
	for _, to := range ids {
		out = append(out, g.edges[inner[to]])
	}
	return out, nil
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns all edges sorted by ID (numeric order of the counter).
func (g *Graph) Edges() []*Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].ID) != len(out[j].ID) {
			return len(out[i].ID) < len(out[j].ID)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	return len(g.edges)
}

// Empty reports whether the graph has no edges.
func (g *Graph) Empty() bool { return g.EdgeCount() == 0 }

// Bound returns the bounding box of all nodes.
func (g *Graph) Bound() orb.Bound {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return orb.Bound{}
	}
	b := geo.ToPoint(nodes[0].Coordinate).Bound()
	for _, n := range nodes[1:] {
		b = b.Extend(geo.ToPoint(n.Coordinate))
	}
	return b
}

// recomputeDegrees sets every node's Degree from the adjacency.
// Lock order muNode -> muEdgeAdj.
func (g *Graph) recomputeDegrees() {
	g.muNode.Lock()
	defer g.muNode.Unlock()
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	for id, n := range g.nodes {
		n.Degree = len(g.adjacency[id])
	}
}

// nextEdgeID atomically increments the edge counter and returns "e<n>".
func nextEdgeID(g *Graph) string {
	n := atomic.AddUint64(&g.nextEdgeID, 1)
	buf := make([]byte, 0, 21)
	buf = append(buf, edgeIDPrefix)
	buf = strconv.AppendUint(buf, n, 10)
	return string(buf)
}
