package dijkstra

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/trailnav/network"
)

// Dijkstra computes shortest routing-weight distances from Options.Source to
// the nodes of g.
//
// Returns:
//
//   - dist: map from node ID to minimum weight (+Inf if unreachable or not settled
//     before an early stop).
//   - prev: predecessor map if ReturnPath=true (nil otherwise).
//     prev[v] == u means the shortest path to v goes through u; "" for the source
//     and unreachable nodes.
//   - err:  validation error, ErrNegativeWeight, or the context error.
//
// Preconditions and validation (in order):
//  1. Source must be non-empty (ErrEmptySource).
//  2. g must be non-nil (ErrNilGraph).
//  3. g must contain Source, and Target when set (ErrNodeNotFound).
//  4. No edge may have a negative weight (ErrNegativeWeight).
//
// Complexity:
//
//   - Time:  O((V + E) log V)
//   - Space: O(V + E)
func Dijkstra(g *network.Graph, opts ...Option) (map[string]float64, map[string]string, error) {
	cfg := DefaultOptions("")
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Source == "" {
		return nil, nil, ErrEmptySource
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if g == nil {
		return nil, nil, ErrNilGraph
	}
	if !g.HasNode(cfg.Source) {
		return nil, nil, fmt.Errorf("%w: source %s", ErrNodeNotFound, cfg.Source)
	}
	if cfg.Target != "" && !g.HasNode(cfg.Target) {
		return nil, nil, fmt.Errorf("%w: target %s", ErrNodeNotFound, cfg.Target)
	}

	for _, e := range g.Edges() {
		if e.Weight < 0 || math.IsNaN(e.Weight) {
			return nil, nil, fmt.Errorf("%w: edge %s→%s weight=%g", ErrNegativeWeight, e.From, e.To, e.Weight)
		}
	}

	nodes := g.Nodes()
	r := &runner{
		g:       g,
		options: cfg,
		dist:    make(map[string]float64, len(nodes)),
		visited: make(map[string]bool, len(nodes)),
		pq:      make(nodePQ, 0, len(nodes)),
	}
	if cfg.ReturnPath {
		r.prev = make(map[string]string, len(nodes))
	}

	r.init(nodes)
	if err := r.process(); err != nil {
		return nil, nil, err
	}

	return r.dist, r.prev, nil
}

// PathTo rebuilds the node sequence source → … → target from a predecessor map.
// Returns nil if target is unreachable.
func PathTo(prev map[string]string, source, target string) []string {
	if target == source {
		return []string{source}
	}
	if prev[target] == "" {
		return nil
	}

	var rev []string
	for v := target; v != ""; v = prev[v] {
		rev = append(rev, v)
		if v == source {
			break
		}
		if len(rev) > len(prev)+1 {
			return nil
		}
	}
	if rev[len(rev)-1] != source {
		return nil
	}

	path := make([]string, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// runner holds the mutable state for a single Dijkstra execution.
type runner struct {
	g       *network.Graph
	options Options
	dist    map[string]float64
	prev    map[string]string
	visited map[string]bool
	pq      nodePQ
}

// init sets dist[v] = +Inf for every node, dist[source] = 0, and seeds the heap.
func (r *runner) init(nodes []*network.Node) {
	for _, n := range nodes {
		r.dist[n.ID] = math.Inf(1)
		if r.prev != nil {
			r.prev[n.ID] = ""
		}
	}
	r.dist[r.options.Source] = 0

	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{id: r.options.Source, dist: 0})
}

// process repeatedly settles the closest unsettled node and relaxes its edges.
// It stops when the heap is empty, the next distance exceeds MaxDistance,
// the target is settled, or the context is done.
func (r *runner) process() error {
	ctx := r.options.Context
	for r.pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.id
		if r.visited[u] {
			continue
		}
		if item.dist > r.options.MaxDistance {
			break
		}
		r.visited[u] = true

		if u == r.options.Target {
			break
		}
		if err := r.relax(u); err != nil {
			return err
		}
	}

	return nil
}

// relax improves distances to the neighbours of the settled node u.
// Only strictly shorter candidates are accepted, so the first path found at a
// given weight is kept.
func (r *runner) relax(u string) error {
	edges, err := r.g.Neighbors(u)
	if err != nil {
		return fmt.Errorf("dijkstra: failed to get neighbors of %q: %w", u, err)
	}

	for _, e := range edges {
		v := e.Other(u)
		if r.visited[v] {
			continue
		}

		newDist := r.dist[u] + e.Weight
		if newDist > r.options.MaxDistance {
			continue
		}
		if newDist >= r.dist[v] {
			continue
		}

		r.dist[v] = newDist
		if r.prev != nil {
			r.prev[v] = u
		}
		heap.Push(&r.pq, &nodeItem{id: v, dist: newDist})
	}

	return nil
}

// nodeItem represents a node and its tentative distance from the source.
type nodeItem struct {
	id   string
	dist float64
}

// nodePQ is a min-heap of *nodeItem ordered by (dist, id).
type nodePQ []*nodeItem

func (pq nodePQ) Len() int { return len(pq) }

func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].id < pq[j].id
}

func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
