// Package dijkstra implements Dijkstra's shortest-path algorithm over a
// network.Graph using edge routing weights.
//
// Overview:
//
//   - Dijkstra computes minimum-weight distances from a single source node to
//     every reachable node in O((V + E) log V) time.
//   - It relies on a min-heap to always expand the next-closest node, using a
//     lazy decrease-key strategy (duplicates are pushed, stale entries skipped).
//   - Heap entries are ordered by (distance, node ID), and a neighbour is only
//     relaxed on a strictly shorter distance, so the selected path is stable
//     across runs for the same graph.
//
// Key features:
//
//   - Target: stop as soon as the target node is settled.
//   - ReturnPath: return the predecessor map for path reconstruction.
//   - MaxDistance: skip nodes whose distance would exceed a cap.
//   - Context: abort with the context error when the caller gives up.
//
// Error handling (sentinel errors):
//
//   - ErrEmptySource:     Source not set.
//   - ErrNilGraph:        nil graph.
//   - ErrNodeNotFound:    source (or target) not present in the graph.
//   - ErrNegativeWeight:  an edge with negative weight (pre-scan, O(E)).
//   - ErrBadMaxDistance:  panic from WithMaxDistance for negative caps.
//
// Thread safety:
//
//   - network.Graph is safe for concurrent reads, so concurrent queries on the
//     same graph need no external locking.
package dijkstra
