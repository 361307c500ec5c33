/*
	topology provides an immutable, compressed adjacency representation of
	a directed graph that can be traversed concurrently by the workers of a
	pregel job.
*/

package topology

import (
	"github.com/mycok/uPregel/pregel"
)

// Static and compile-time check to ensure Graph implements the pregel
// Topology and IDMapper interfaces.
var (
	_ pregel.Topology = (*Graph)(nil)
	_ pregel.IDMapper = (*Graph)(nil)
)

// Graph stores the outgoing edges of every vertex in compressed sparse row
// form. The outgoing edges of vertex v are located at
// targets[offsets[v]:offsets[v+1]]. A Graph is never mutated after it has
// been built and can therefore be shared by any number of goroutines.
type Graph struct {
	offsets []int64
	targets []int64
	weights []float64

	// ids maps internal to original vertex ids. It is nil for graphs that
	// were built from internal ids.
	ids   []string
	index map[string]int64
}

// FromAdjacency builds an unweighted graph from an adjacency list indexed by
// internal vertex id. Every edge is assigned a weight of 1. Target ids are not
// validated; callers are expected to provide ids in [0, len(adj)).
func FromAdjacency(adj [][]int64) *Graph {
	g := &Graph{offsets: make([]int64, len(adj)+1)}

	for v, targets := range adj {
		g.offsets[v+1] = g.offsets[v] + int64(len(targets))
		g.targets = append(g.targets, targets...)
	}

	g.weights = make([]float64, len(g.targets))
	for i := range g.weights {
		g.weights[i] = 1
	}

	return g
}

// VertexCount returns the number of vertices in the graph.
func (g *Graph) VertexCount() int64 { return int64(len(g.offsets) - 1) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int64 { return int64(len(g.targets)) }

// Degree returns the number of outgoing edges of the vertex.
func (g *Graph) Degree(vertexID int64) int {
	return int(g.offsets[vertexID+1] - g.offsets[vertexID])
}

// ForEachNeighbor invokes fn for each outgoing edge of the vertex until fn
// returns false.
func (g *Graph) ForEachNeighbor(vertexID int64, fn func(targetID int64, weight float64) bool) {
	for i := g.offsets[vertexID]; i < g.offsets[vertexID+1]; i++ {
		if !fn(g.targets[i], g.weights[i]) {
			return
		}
	}
}

// ConcurrentCopy returns the graph itself; traversals keep no state.
func (g *Graph) ConcurrentCopy() pregel.Topology { return g }

// ToOriginalID returns the original id of an internal vertex id.
func (g *Graph) ToOriginalID(vertexID int64) (string, bool) {
	if g.ids == nil || vertexID < 0 || vertexID >= int64(len(g.ids)) {
		return "", false
	}

	return g.ids[vertexID], true
}

// ToInternalID returns the internal vertex id of an original id.
func (g *Graph) ToInternalID(originalID string) (int64, bool) {
	vertexID, ok := g.index[originalID]
	return vertexID, ok
}
