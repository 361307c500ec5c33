package components_test

import (
	"context"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/uPregel/components"
	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/topology"
)

var _ = check.Suite(new(componentsTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type componentsTestSuite struct{}

// cycles returns a graph where each cycle is connected in both directions:
// {a,b,c,d}, {e,f,g}, {h,i} and the isolated vertex j.
func cycles() *topology.Graph {
	b := topology.NewBuilder()
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		b.AddVertex(id)
	}

	for _, cycle := range [][]string{{"a", "b", "c", "d"}, {"e", "f", "g"}, {"h", "i"}} {
		for i, src := range cycle {
			dest := cycle[(i+1)%len(cycle)]
			_ = b.AddEdge(src, dest, 1)
			_ = b.AddEdge(dest, src, 1)
		}
	}

	return b.Build()
}

func (s *componentsTestSuite) TestMinIDPropagation(c *check.C) {
	exp := []float64{0, 0, 0, 0, 4, 4, 4, 7, 7, 9}
	g := cycles()

	for _, async := range []bool{false, true} {
		for concurrency := 1; concurrency <= 10; concurrency++ {
			job, err := pregel.NewJob(pregel.JobConfig{
				Topology:      g,
				Computation:   components.Computation{},
				Asynchronous:  async,
				Concurrency:   concurrency,
				MaxSupersteps: 20,
			})
			c.Assert(err, check.IsNil)

			res, err := job.Run(context.TODO())
			c.Assert(err, check.IsNil)
			c.Assert(res.DidConverge(), check.Equals, true)
			c.Assert(
				res.Values.ToSlice(), check.DeepEquals, exp,
				check.Commentf("async: %t, concurrency: %d", async, concurrency),
			)
		}
	}
}

func (s *componentsTestSuite) TestCalculator(c *check.C) {
	calc, err := components.NewCalculator(3, false)
	c.Assert(err, check.IsNil)

	_, err = calc.Count()
	c.Assert(err, check.Equals, components.ErrNotCalculated)

	for _, id := range []string{"x", "y", "z", "w"} {
		calc.AddVertex(id)
	}
	c.Assert(calc.AddEdge("y", "x"), check.IsNil)
	c.Assert(calc.AddEdge("w", "z"), check.IsNil)
	c.Assert(calc.AddEdge("x", "missing"), check.NotNil)

	c.Assert(calc.Calculate(context.TODO()), check.IsNil)

	got := make(map[string]string)
	err = calc.Components(func(id, componentID string) error {
		got[id] = componentID
		return nil
	})
	c.Assert(err, check.IsNil)
	c.Assert(got, check.DeepEquals, map[string]string{
		"x": "x", "y": "x", "z": "z", "w": "z",
	})

	count, err := calc.Count()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, 2)
}

func (s *componentsTestSuite) TestCalculatorOnLongChain(c *check.C) {
	calc, err := components.NewCalculator(4, true)
	c.Assert(err, check.IsNil)

	ids := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}
	for _, id := range ids {
		calc.AddVertex(id)
	}
	// Connect the chain from its tail so the smallest id has to travel the
	// whole way.
	for i := len(ids) - 1; i > 0; i-- {
		c.Assert(calc.AddEdge(ids[i], ids[i-1]), check.IsNil)
	}

	c.Assert(calc.Calculate(context.TODO()), check.IsNil)

	err = calc.Components(func(id, componentID string) error {
		c.Assert(componentID, check.Equals, "0", check.Commentf("vertex %s", id))
		return nil
	})
	c.Assert(err, check.IsNil)

	count, err := calc.Count()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, 1)
}
