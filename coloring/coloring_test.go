package coloring_test

import (
	"context"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/uPregel/coloring"
)

var _ = check.Suite(new(colorTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type colorTestSuite struct{}

func (s *colorTestSuite) TestUncoloredGraph(c *check.C) {
	// Use a fixed seed to make the test deterministic.
	assigner, err := coloring.NewColorAssigner(16, 42)
	c.Assert(err, check.IsNil)

	vertexToEdges := map[string][]string{
		"0": {"1", "2"},
		"1": {"2", "3"},
		"2": {"3"},
		"3": {"4"},
	}

	maxEdges := populateGraph(c, assigner, vertexToEdges, nil)
	vertexToColor := make(map[string]int)

	totalAssignedColors, err := assigner.AssignColors(context.TODO(), func(vertexID string, color int) {
		vertexToColor[vertexID] = color
	})
	c.Assert(err, check.IsNil)
	c.Assert(vertexToColor, check.HasLen, 5)

	maxAssignedColors := maxEdges + 1

	c.Assert(totalAssignedColors <= maxAssignedColors, check.Equals, true)
	assertNoColorConflictsBetweenVertices(c, vertexToEdges, vertexToColor)
}

func (s *colorTestSuite) TestPartiallyPreColoredGraph(c *check.C) {
	assigner, err := coloring.NewColorAssigner(16, 101)
	c.Assert(err, check.IsNil)

	preColoredVertices := map[string]int{
		"0": 1,
		"3": 1,
	}

	vertexToEdges := map[string][]string{
		"0": {"1", "2"},
		"1": {"2", "3"},
		"2": {"3"},
		"3": {"4"},
	}

	maxEdges := populateGraph(c, assigner, vertexToEdges, preColoredVertices)
	vertexToColor := make(map[string]int)

	totalAssignedColors, err := assigner.AssignColors(context.TODO(), func(vertexID string, color int) {
		vertexToColor[vertexID] = color
		if preColor := preColoredVertices[vertexID]; preColor != 0 {
			c.Assert(
				color, check.Equals, preColor,
				check.Commentf(
					"pre-colored vertex %v color was overwritten from %d to %d",
					vertexID, preColor, color,
				),
			)
		}
	})
	c.Assert(err, check.IsNil)

	maxAssignedColors := maxEdges + 1

	c.Assert(totalAssignedColors <= maxAssignedColors, check.Equals, true)
	assertNoColorConflictsBetweenVertices(c, vertexToEdges, vertexToColor)
}

func (s *colorTestSuite) TestLargerGraphAcrossSeeds(c *check.C) {
	// A 6x6 grid with diagonals has a maximum degree of 8.
	vertexToEdges := make(map[string][]string)
	id := func(x, y int) string { return string(rune('a'+x)) + string(rune('a'+y)) }
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			if x+1 < 6 {
				vertexToEdges[id(x, y)] = append(vertexToEdges[id(x, y)], id(x+1, y))
			}
			if y+1 < 6 {
				vertexToEdges[id(x, y)] = append(vertexToEdges[id(x, y)], id(x, y+1))
			}
			if x+1 < 6 && y+1 < 6 {
				vertexToEdges[id(x, y)] = append(vertexToEdges[id(x, y)], id(x+1, y+1))
			}
		}
	}

	for seed := int64(0); seed < 5; seed++ {
		assigner, err := coloring.NewColorAssigner(4, seed)
		c.Assert(err, check.IsNil)

		maxEdges := populateGraph(c, assigner, vertexToEdges, nil)
		vertexToColor := make(map[string]int)

		totalAssignedColors, err := assigner.AssignColors(context.TODO(), func(vertexID string, color int) {
			vertexToColor[vertexID] = color
		})
		c.Assert(err, check.IsNil)
		c.Assert(vertexToColor, check.HasLen, 36)
		c.Assert(totalAssignedColors <= maxEdges+1, check.Equals, true)
		assertNoColorConflictsBetweenVertices(c, vertexToEdges, vertexToColor)
	}
}

func (s *colorTestSuite) TestIsolatedVertex(c *check.C) {
	assigner, err := coloring.NewColorAssigner(2, 1)
	c.Assert(err, check.IsNil)

	assigner.AddVertex("lonely")

	var got int
	total, err := assigner.AssignColors(context.TODO(), func(_ string, color int) {
		got = color
	})
	c.Assert(err, check.IsNil)
	c.Assert(got, check.Equals, 1)
	c.Assert(total, check.Equals, 1)
}

// populateGraph adds the vertices and edges to the assigner and returns the
// maximum vertex degree of the undirected graph.
func populateGraph(
	c *check.C, assigner *coloring.Assigner, vertexToEdges map[string][]string,
	preColoredVertices map[string]int,
) int {

	neighbors := make(map[string]map[string]bool)
	ensure := func(id string) map[string]bool {
		if neighbors[id] == nil {
			neighbors[id] = make(map[string]bool)
		}
		return neighbors[id]
	}
	link := func(a, b string) {
		ensure(a)[b] = true
	}

	for src, destinations := range vertexToEdges {
		ensure(src)
		for _, dest := range destinations {
			link(src, dest)
			link(dest, src)
		}
	}

	// Add vertices to the graph.
	for id := range neighbors {
		if vertexColor := preColoredVertices[id]; vertexColor != 0 {
			assigner.AddPreColoredVertex(id, vertexColor)
		} else {
			assigner.AddVertex(id)
		}
	}

	// Add vertex edges to the graph.
	for src, destinations := range vertexToEdges {
		for _, dest := range destinations {
			c.Assert(assigner.AddEdge(src, dest), check.IsNil)
		}
	}

	var maxEdges int
	for _, n := range neighbors {
		if len(n) > maxEdges {
			maxEdges = len(n)
		}
	}

	return maxEdges
}

func assertNoColorConflictsBetweenVertices(
	c *check.C, vertexToEdges map[string][]string,
	vertexToColor map[string]int,
) {

	for srcID, destinations := range vertexToEdges {
		srcColor := vertexToColor[srcID]
		c.Assert(
			srcColor, check.Not(check.Equals), 0,
			check.Commentf("no color assigned to vertex %v", srcID),
		)

		for _, destID := range destinations {
			c.Assert(
				vertexToColor[destID], check.Not(check.Equals), srcColor,
				check.Commentf(
					"neighbor vertex %s assigned same color %d as src vertex %s",
					destID, srcColor, srcID,
				),
			)
		}
	}
}
