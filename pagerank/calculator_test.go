package pagerank_test

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uPregel/pagerank"
	"github.com/mycok/uPregel/pregel"
)

var _ = check.Suite(new(CalculatorTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type edge struct {
	src, dest string
}

type scoreCase struct {
	description string
	config      pagerank.Config
	vertices    []string
	edges       []edge
	expScores   map[string]float64
	tolerance   float64
	expSum      float64
}

type CalculatorTestSuite struct{}

func (s *CalculatorTestSuite) TestSimpleGraphCase1(c *check.C) {
	tc := scoreCase{
		description: `
(A -> (B) -> (C)
 ^            |
 |            |
 +------------+
Expect the page rank score to be distributed evenly across the three nodes 
`,
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{src: "A", dest: "B"},
			{src: "B", dest: "C"},
			{src: "C", dest: "A"},
		},
		expScores: map[string]float64{
			"A": 1.0 / 3.0,
			"B": 1.0 / 3.0,
			"C": 1.0 / 3.0,
		},
	}

	s.assertOnPageRankScores(c, tc)
}

func (s *CalculatorTestSuite) TestSimpleGraphCase2(c *check.C) {
	tc := scoreCase{
		description: `
  +--(A)<-+
  |       |
  V       |
 (B) <-> (C)

Expect B and C to get better score than A due to the back-link between them.
Also, B should get slightly better score than C as there are two links pointing
to it.
`,
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{"A", "B"},
			{"B", "C"},
			{"C", "A"},
			{"C", "B"},
		},
		expScores: map[string]float64{
			"A": 0.2145,
			"B": 0.3937,
			"C": 0.3879,
		},
	}

	s.assertOnPageRankScores(c, tc)
}

func (s *CalculatorTestSuite) TestSimpleGraphCase3(c *check.C) {
	tc := scoreCase{
		description: `
 (A) <-> (B) <-> (C)

Expect A and C to get the same score and B to get the largest score since there 
are two links pointing to it.
`,
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{"A", "B"},
			{"B", "A"},
			{"B", "C"},
			{"C", "B"},
		},
		expScores: map[string]float64{
			"A": 0.2569,
			"B": 0.4860,
			"C": 0.2569,
		},
	}

	s.assertOnPageRankScores(c, tc)
}

func (s *CalculatorTestSuite) TestDeadEnd(c *check.C) {
	tc := scoreCase{
		description: `
 (A) -> (B) -> (C)

Expect that S(A) < S(B) < S(C). C is a dead-end as it has no outgoing links.
With dead-end redistribution enabled, C's score is transferred to every node
in the graph; essentially, it's like C is connected to all other nodes in the
graph.
`,
		config:   pagerank.Config{RedistributeDeadEnds: true},
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{"A", "B"},
			{"B", "C"},
		},
		expScores: map[string]float64{
			"A": 0.1842,
			"B": 0.3411,
			"C": 0.4745,
		},
	}

	s.assertOnPageRankScores(c, tc)
}

func (s *CalculatorTestSuite) TestDeadEndWithoutRedistribution(c *check.C) {
	tc := scoreCase{
		description: `
 (A) -> (B) -> (C)

Without redistribution, the score that flows into the dead-end C leaks out of
the graph and the scores no longer add up to 1.
`,
		vertices: []string{"A", "B", "C"},
		edges: []edge{
			{"A", "B"},
			{"B", "C"},
		},
		expScores: map[string]float64{
			"A": 0.05,
			"B": 0.0925,
			"C": 0.1286,
		},
		expSum: 0.2711,
	}

	s.assertOnPageRankScores(c, tc)
}

func (s *CalculatorTestSuite) TestCanonicalExampleGraph(c *check.C) {
	tc := scoreCase{
		description: `
The canonical 11 node PageRank example graph, run for exactly 10 supersteps.
`,
		config:   pagerank.Config{MaxSupersteps: 10},
		vertices: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
		edges: []edge{
			{"b", "c"},
			{"c", "b"},
			{"d", "a"}, {"d", "b"},
			{"e", "b"}, {"e", "d"}, {"e", "f"},
			{"f", "b"}, {"f", "e"},
			{"g", "b"}, {"g", "e"},
			{"h", "b"}, {"h", "e"},
			{"i", "b"}, {"i", "e"},
			{"j", "e"},
			{"k", "e"},
		},
		expScores: map[string]float64{
			"a": 0.0277,
			"b": 0.3483,
			"c": 0.2650,
			"d": 0.0330,
			"e": 0.0683,
			"f": 0.0330,
			"g": 0.0136,
			"h": 0.0136,
			"i": 0.0136,
			"j": 0.0136,
			"k": 0.0136,
		},
		tolerance: 1e-3,
		expSum:    0.8434,
	}

	calc := s.assertOnPageRankScores(c, tc)
	c.Assert(calc.Result().Status, check.Equals, pregel.MaxSuperstepsReached)
	c.Assert(calc.Result().RanSupersteps, check.Equals, 10)
}

func (s *CalculatorTestSuite) TestScoresBeforeCalculation(c *check.C) {
	calc, err := pagerank.NewCalculator(pagerank.Config{})
	c.Assert(err, check.IsNil)

	err = calc.Scores(func(string, float64) error { return nil })
	c.Assert(err, check.Equals, pagerank.ErrNotCalculated)
}

func (s *CalculatorTestSuite) TestConfigValidation(c *check.C) {
	_, err := pagerank.NewCalculator(pagerank.Config{DampingFactor: 1.5})
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value 1.5 for damping factor.*")

	_, err = pagerank.NewCalculator(pagerank.Config{MaxSupersteps: -1})
	c.Assert(err, check.ErrorMatches, "(?ms).*invalid value -1 for max supersteps.*")
}

func (s *CalculatorTestSuite) TestConvergenceForLargeGraphs(c *check.C) {
	s.assertOnConvergence(c, 100000, 7)
}

func (s *CalculatorTestSuite) assertOnPageRankScores(c *check.C, tc scoreCase) *pagerank.Calculator {
	c.Log(tc.description)

	cfg := tc.config
	cfg.ComputeWorkers = 2
	if cfg.MinSADForConvergence == 0 {
		cfg.MinSADForConvergence = 0.001
	}
	if cfg.MaxSupersteps == 0 {
		cfg.MaxSupersteps = 200
	}
	if tc.tolerance == 0 {
		tc.tolerance = 0.01
	}
	if tc.expSum == 0 {
		tc.expSum = 1.0
	}

	calc, err := pagerank.NewCalculator(cfg)
	c.Assert(err, check.IsNil)

	// Add vertices to the graph.
	for _, id := range tc.vertices {
		calc.AddVertex(id)
	}

	// Add edges to the graph.
	for _, e := range tc.edges {
		c.Assert(calc.AddEdge(e.src, e.dest), check.IsNil)
	}

	err = calc.CalculatePageRanks(context.TODO())
	c.Assert(err, check.IsNil)
	c.Logf("****converged after %d steps****", calc.Result().RanSupersteps)

	var pageRankSum float64
	err = calc.Scores(func(id string, score float64) error {
		pageRankSum += score
		absDelta := math.Abs(score - tc.expScores[id])

		c.Assert(
			absDelta <= tc.tolerance, check.Equals, true,
			check.Commentf(
				"expected score for %v to be %f ± %v; got %f (abs. delta %f)",
				id, tc.expScores[id], tc.tolerance, score, absDelta,
			))

		return nil
	})
	c.Assert(err, check.IsNil)

	c.Assert(
		math.Abs(tc.expSum-pageRankSum) <= 0.001, check.Equals, true,
		check.Commentf(
			"expected all pagerank scores to add up to %f; got %f", tc.expSum, pageRankSum,
		))

	return calc
}

func (s *CalculatorTestSuite) assertOnConvergence(c *check.C, numOfLinks, maxOutLinks int) {
	calc, err := pagerank.NewCalculator(pagerank.Config{
		ComputeWorkers:       32,
		MinSADForConvergence: 0.001,
		RedistributeDeadEnds: true,
		MaxSupersteps:        200,
	})
	c.Assert(err, check.IsNil)

	// Ensure to use the same seed to make the test deterministic.
	rnd := rand.New(rand.NewSource(42))

	names := make([]string, numOfLinks)
	for i := 0; i < numOfLinks; i++ {
		names[i] = strconv.FormatInt(int64(i), 10)
		calc.AddVertex(names[i])
	}

	start := time.Now()
	for i := 0; i < numOfLinks; i++ {
		outLinks := rnd.Intn(maxOutLinks)
		for j := 0; j < outLinks; j++ {
			dest := rnd.Intn(numOfLinks)
			c.Assert(calc.AddEdge(names[i], names[dest]), check.IsNil)
		}
	}
	c.Logf(
		"constructed %d nodes in %v",
		numOfLinks, time.Since(start).Truncate(time.Millisecond).String(),
	)

	start = time.Now()
	err = calc.CalculatePageRanks(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(calc.Result().DidConverge(), check.Equals, true)
	c.Logf(
		"converged %d nodes after %d steps in %v",
		numOfLinks, calc.Result().RanSupersteps,
		time.Since(start).Truncate(time.Millisecond).String(),
	)

	var pageRankSum float64
	err = calc.Scores(func(id string, score float64) error {
		pageRankSum += score

		return nil
	})
	c.Assert(err, check.IsNil)

	c.Assert(
		math.Abs(1.0-pageRankSum) <= 0.001, check.Equals, true,
		check.Commentf("expected all pagerank scores to add up to 1.0; got %f", pageRankSum),
	)
}
