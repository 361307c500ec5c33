package topology

import (
	"errors"
	"fmt"
)

// ErrUnknownVertex is returned when an edge refers to a vertex that has not
// been added to the builder.
var ErrUnknownVertex = errors.New("vertex is not part of the graph")

type edge struct {
	target int64
	weight float64
}

// Builder assembles a Graph from vertices and edges that are identified by
// their original ids. Internal ids are assigned densely in insertion order.
// A Builder is not safe for concurrent use.
type Builder struct {
	ids   []string
	index map[string]int64
	edges [][]edge
}

// NewBuilder returns a new empty Builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int64)}
}

// VertexCount returns the number of vertices added so far.
func (b *Builder) VertexCount() int64 { return int64(len(b.ids)) }

// AddVertex adds a vertex with the specified original id and returns its
// internal id. Adding an existing vertex returns its existing internal id.
func (b *Builder) AddVertex(id string) int64 {
	if vertexID, exists := b.index[id]; exists {
		return vertexID
	}

	vertexID := int64(len(b.ids))
	b.ids = append(b.ids, id)
	b.index[id] = vertexID
	b.edges = append(b.edges, nil)

	return vertexID
}

// AddEdge adds a directed, weighted edge from srcID to destID. Both vertices
// must have been added beforehand.
func (b *Builder) AddEdge(srcID, destID string, weight float64) error {
	src, exists := b.index[srcID]
	if !exists {
		return fmt.Errorf("create edge from %q to %q: %w", srcID, destID, ErrUnknownVertex)
	}

	dest, exists := b.index[destID]
	if !exists {
		return fmt.Errorf("create edge from %q to %q: %w", srcID, destID, ErrUnknownVertex)
	}

	b.edges[src] = append(b.edges[src], edge{target: dest, weight: weight})

	return nil
}

// AddUndirectedEdge adds a pair of opposite directed edges between srcID and
// destID. A self-loop is only added once.
func (b *Builder) AddUndirectedEdge(srcID, destID string, weight float64) error {
	if err := b.AddEdge(srcID, destID, weight); err != nil {
		return err
	}

	if srcID == destID {
		return nil
	}

	return b.AddEdge(destID, srcID, weight)
}

// Build compresses the added vertices and edges into an immutable Graph. The
// builder can keep being used afterwards; subsequent changes do not affect
// graphs that have already been built.
func (b *Builder) Build() *Graph {
	g := &Graph{
		offsets: make([]int64, len(b.ids)+1),
		ids:     append([]string(nil), b.ids...),
		index:   make(map[string]int64, len(b.index)),
	}

	for id, vertexID := range b.index {
		g.index[id] = vertexID
	}

	for v, edges := range b.edges {
		g.offsets[v+1] = g.offsets[v] + int64(len(edges))
	}

	g.targets = make([]int64, g.offsets[len(b.ids)])
	g.weights = make([]float64, len(g.targets))

	for v, edges := range b.edges {
		for i, e := range edges {
			g.targets[g.offsets[v]+int64(i)] = e.target
			g.weights[g.offsets[v]+int64(i)] = e.weight
		}
	}

	return g
}
