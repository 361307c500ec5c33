/*
	labelprop detects communities using label propagation. Every vertex starts
	in its own community and repeatedly joins the community that is most
	frequent among its neighbors until no vertex changes its label.
*/

package labelprop

import (
	"context"
	"errors"
	"fmt"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/aggregator"
	"github.com/mycok/uPregel/pregel/message"
	"github.com/mycok/uPregel/topology"
)

const changesAggregator = "changes"

// ErrNotCalculated is returned when communities are requested before a
// calculation has completed.
var ErrNotCalculated = errors.New("communities have not been calculated yet")

// Computation is the label propagation vertex program. The value of every
// vertex is the internal id of the vertex whose label it adopted. Ties
// between equally frequent labels are resolved in favor of the smallest
// label so the result does not depend on message order.
type Computation struct{}

// Name implements pregel.Named.
func (Computation) Name() string { return "labelprop" }

// Aggregators implements pregel.AggregatingComputation.
func (Computation) Aggregators() map[string]aggregator.Aggregator {
	return map[string]aggregator.Aggregator{
		changesAggregator: new(aggregator.Float64Accumulator),
	}
}

// Init assigns every vertex its own label.
func (Computation) Init(ctx *pregel.InitContext) error {
	ctx.SetValue(float64(ctx.VertexID()))

	return nil
}

// Compute adopts the most frequent label among the incoming messages and
// announces the current label to all neighbors.
func (Computation) Compute(ctx *pregel.ComputeContext, msgs message.Iterator) error {
	if !ctx.IsInitialSuperstep() {
		if label, found := mostFrequentLabel(msgs); found && label != ctx.Value() {
			ctx.SetValue(label)
			ctx.Aggregator(changesAggregator).Aggregate(1)
		}
	}

	return ctx.SendToNeighbors(ctx.Value())
}

// MasterCompute stops the job once a superstep did not change any label.
func (Computation) MasterCompute(ctx *pregel.MasterContext) bool {
	changes := ctx.Aggregator(changesAggregator)
	defer changes.Set(0)

	return ctx.Superstep() > 0 && changes.Get() == 0
}

func mostFrequentLabel(msgs message.Iterator) (float64, bool) {
	counts := make(map[float64]int)
	for msgs.Next() {
		counts[msgs.Message()]++
	}

	var (
		best      float64
		bestCount int
	)

	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}

	return best, bestCount > 0
}

// Calculator detects the communities of an undirected graph.
type Calculator struct {
	numOfWorkers  int
	maxSupersteps int
	builder       *topology.Builder
	graph         *topology.Graph
	result        *pregel.Result
}

// NewCalculator returns a new label propagation calculator. Synchronous
// label propagation may oscillate on bipartite structures so the number of
// supersteps is always bounded by maxSupersteps.
func NewCalculator(numOfWorkers, maxSupersteps int) (*Calculator, error) {
	if numOfWorkers <= 0 {
		return nil, fmt.Errorf("invalid value %d for compute workers, must be > 0", numOfWorkers)
	} else if maxSupersteps <= 0 {
		return nil, fmt.Errorf("invalid value %d for max supersteps, must be > 0", maxSupersteps)
	}

	return &Calculator{
		numOfWorkers:  numOfWorkers,
		maxSupersteps: maxSupersteps,
		builder:       topology.NewBuilder(),
	}, nil
}

// AddVertex adds a new vertex / node with the specified ID into the graph.
func (c *Calculator) AddVertex(id string) {
	c.builder.AddVertex(id)
}

// AddEdge connects srcID and destID. The edge direction is ignored.
func (c *Calculator) AddEdge(srcID, destID string) error {
	return c.builder.AddUndirectedEdge(srcID, destID, 1)
}

// Calculate runs label propagation until the labels are stable or the
// superstep limit is hit.
func (c *Calculator) Calculate(ctx context.Context) (*pregel.Result, error) {
	c.graph = c.builder.Build()

	concurrency := c.numOfWorkers
	if maxBatches := pregel.MaxBatchCount(c.graph.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:      c.graph,
		Computation:   Computation{},
		Concurrency:   concurrency,
		MaxSupersteps: c.maxSupersteps,
	})
	if err != nil {
		return nil, err
	}

	res, err := job.Run(ctx)
	if err != nil {
		return nil, err
	}

	c.result = res

	return res, nil
}

// Communities invokes visitFn with the id of every vertex and the id of the
// vertex whose label it carries.
func (c *Calculator) Communities(visitFn func(id, communityID string) error) error {
	if c.result == nil {
		return ErrNotCalculated
	}

	var err error
	c.result.Values.ForEach(func(vertexID int64, label float64) bool {
		id, _ := c.graph.ToOriginalID(vertexID)
		communityID, _ := c.graph.ToOriginalID(int64(label))
		err = visitFn(id, communityID)

		return err == nil
	})

	return err
}
