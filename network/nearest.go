package network

import (
	"math"

	"github.com/katalvlaran/trailnav/geo"
)

const (
	proximityWeight    = 0.8
	connectivityWeight = 0.2

	// saturatingDegree is the degree at which the connectivity score tops out.
	saturatingDegree = 4
)

// FindNearestNode returns the best node within maxDistance meters of c.
//
// Candidates are scored by 0.8·proximity + 0.2·connectivity, where proximity
// is 1 - d/maxDistance and connectivity is min(degree, 4)/4, so a junction a
// few meters further away beats a dead-end stub. Ties resolve by node ID.
// Returns the node, its distance from c, and false if no node is in range.
//
// Complexity: O(V).
func (g *Graph) FindNearestNode(c geo.Coordinate, maxDistance float64) (*Node, float64, bool) {
	if maxDistance <= 0 || !c.Valid() {
		return nil, 0, false
	}

	var (
		best      *Node
		bestDist  float64
		bestScore = math.Inf(-1)
	)
	for _, n := range g.Nodes() {
		d := geo.Distance(c, n.Coordinate)
		if d > maxDistance {
			continue
		}
		proximity := 1 - d/maxDistance
		connectivity := math.Min(float64(n.Degree), saturatingDegree) / saturatingDegree
		score := proximityWeight*proximity + connectivityWeight*connectivity

		// Nodes() is sorted by ID, so strict ">" keeps the lowest ID on ties.
		if score > bestScore {
			best, bestDist, bestScore = n, d, score
		}
	}
	if best == nil {
		return nil, 0, false
	}

	return best, bestDist, true
}
