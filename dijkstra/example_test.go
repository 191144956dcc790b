package dijkstra_test

import (
	"fmt"

	"github.com/katalvlaran/trailnav/dijkstra"
	"github.com/katalvlaran/trailnav/network"
)

// ExampleDijkstra shows the road bias: two road sides of a 100 m square are
// cheaper than the footway diagonal, so the path takes the long way round.
func ExampleDijkstra() {
	g := square()
	src, dst := network.NodeID(at(0, 0)), network.NodeID(at(100, 100))

	dist, prev, err := dijkstra.Dijkstra(g, dijkstra.Source(src), dijkstra.Target(dst), dijkstra.WithReturnPath())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Printf("hops=%d weight=%.0f\n", len(dijkstra.PathTo(prev, src, dst))-1, dist[dst])
	// Output: hops=2 weight=160
}
