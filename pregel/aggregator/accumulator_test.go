package aggregator

import (
	"math"
	"math/rand"
	"testing"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(accumulatorTestSuite))

type accumulatorTestSuite struct{}

func Test(t *testing.T) {
	check.TestingT(t)
}

func (s *accumulatorTestSuite) TestFloat64Accumulator(c *check.C) {
	var expected float64
	numOfValues := 100
	values := make([]float64, numOfValues)

	for i := 0; i < numOfValues; i++ {
		next := rand.Float64()
		values[i] = next
		expected += next
	}

	aggregated := testConcurrentAggregation(new(Float64Accumulator), values)

	absDelta := math.Abs(expected - aggregated)
	c.Assert(
		absDelta < 1e-6, check.Equals, true,
		check.Commentf("expected to get %f; got %f; |delta| %f > 1e-6", expected, aggregated, absDelta),
	)
}

func (s *accumulatorTestSuite) TestFloat64AccumulatorDelta(c *check.C) {
	acc := new(Float64Accumulator)
	acc.Set(2)
	acc.Aggregate(3)

	c.Assert(acc.Delta(), check.Equals, 3.0)
	c.Assert(acc.Delta(), check.Equals, 0.0)
	c.Assert(acc.Get(), check.Equals, 5.0)
}

func (s *accumulatorTestSuite) TestMinMaxAccumulators(c *check.C) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i) - 42
	}
	rand.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })

	c.Assert(testConcurrentAggregation(NewMaxAccumulator(), values), check.Equals, 57.0)
	c.Assert(testConcurrentAggregation(NewMinAccumulator(), values), check.Equals, -42.0)

	maxAcc := NewMaxAccumulator()
	c.Assert(math.IsInf(maxAcc.Get(), -1), check.Equals, true)
	maxAcc.Aggregate(1)
	c.Assert(maxAcc.Delta(), check.Equals, 1.0)
	c.Assert(maxAcc.Delta(), check.Equals, 0.0)
}

func testConcurrentAggregation(a Aggregator, values []float64) float64 {
	startChan := make(chan struct{})
	syncChan := make(chan struct{})
	doneChan := make(chan struct{})

	for i := 0; i < len(values); i++ {
		go func(index int) {
			startChan <- struct{}{}
			<-syncChan
			a.Aggregate(values[index])
			doneChan <- struct{}{}
		}(i)
	}

	for i := 0; i < len(values); i++ {
		<-startChan
	}

	close(syncChan)

	for i := 0; i < len(values); i++ {
		<-doneChan
	}

	return a.Get()
}
