package topology

import (
	"errors"
	"testing"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(GraphTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type GraphTestSuite struct{}

func (s *GraphTestSuite) TestFromAdjacency(c *check.C) {
	g := FromAdjacency([][]int64{
		{1, 2},
		{},
		{0},
	})

	c.Assert(g.VertexCount(), check.Equals, int64(3))
	c.Assert(g.EdgeCount(), check.Equals, int64(3))
	c.Assert(g.Degree(0), check.Equals, 2)
	c.Assert(g.Degree(1), check.Equals, 0)
	c.Assert(neighbors(g, 0), check.DeepEquals, []int64{1, 2})
	c.Assert(neighbors(g, 2), check.DeepEquals, []int64{0})

	_, ok := g.ToOriginalID(0)
	c.Assert(ok, check.Equals, false, check.Commentf("expected no id mapping for adjacency graphs"))
}

func (s *GraphTestSuite) TestBuilder(c *check.C) {
	b := NewBuilder()
	c.Assert(b.AddVertex("a"), check.Equals, int64(0))
	c.Assert(b.AddVertex("b"), check.Equals, int64(1))
	c.Assert(b.AddVertex("a"), check.Equals, int64(0), check.Commentf("expected AddVertex to be idempotent"))
	c.Assert(b.AddVertex("c"), check.Equals, int64(2))

	c.Assert(b.AddEdge("a", "b", 2.5), check.IsNil)
	c.Assert(b.AddUndirectedEdge("b", "c", 1), check.IsNil)
	c.Assert(b.AddUndirectedEdge("c", "c", 1), check.IsNil)

	err := b.AddEdge("a", "missing", 1)
	c.Assert(errors.Is(err, ErrUnknownVertex), check.Equals, true)
	err = b.AddEdge("missing", "a", 1)
	c.Assert(errors.Is(err, ErrUnknownVertex), check.Equals, true)

	g := b.Build()
	c.Assert(g.VertexCount(), check.Equals, int64(3))
	c.Assert(g.EdgeCount(), check.Equals, int64(4))
	c.Assert(neighbors(g, 0), check.DeepEquals, []int64{1})
	c.Assert(neighbors(g, 1), check.DeepEquals, []int64{2})
	c.Assert(neighbors(g, 2), check.DeepEquals, []int64{1, 2})

	var weight float64
	g.ForEachNeighbor(0, func(_ int64, w float64) bool {
		weight = w
		return true
	})
	c.Assert(weight, check.Equals, 2.5)

	id, ok := g.ToOriginalID(2)
	c.Assert(ok, check.Equals, true)
	c.Assert(id, check.Equals, "c")

	vertexID, ok := g.ToInternalID("b")
	c.Assert(ok, check.Equals, true)
	c.Assert(vertexID, check.Equals, int64(1))

	_, ok = g.ToInternalID("missing")
	c.Assert(ok, check.Equals, false)
	_, ok = g.ToOriginalID(42)
	c.Assert(ok, check.Equals, false)
}

func (s *GraphTestSuite) TestBuiltGraphIsNotAffectedByBuilderChanges(c *check.C) {
	b := NewBuilder()
	b.AddVertex("a")
	b.AddVertex("b")
	c.Assert(b.AddEdge("a", "b", 1), check.IsNil)

	g := b.Build()

	b.AddVertex("c")
	c.Assert(b.AddEdge("a", "c", 1), check.IsNil)

	c.Assert(g.VertexCount(), check.Equals, int64(2))
	c.Assert(neighbors(g, 0), check.DeepEquals, []int64{1})
	_, ok := g.ToInternalID("c")
	c.Assert(ok, check.Equals, false)
}

func (s *GraphTestSuite) TestEarlyStop(c *check.C) {
	g := FromAdjacency([][]int64{{0, 0, 0}})

	var visited int
	g.ForEachNeighbor(0, func(int64, float64) bool {
		visited++
		return visited < 2
	})

	c.Assert(visited, check.Equals, 2)
}

func neighbors(g *Graph, vertexID int64) []int64 {
	out := []int64{}
	g.ForEachNeighbor(vertexID, func(targetID int64, _ float64) bool {
		out = append(out, targetID)
		return true
	})

	return out
}
