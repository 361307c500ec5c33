/*
	components finds the weakly connected components of a graph by
	propagating the minimum vertex id along undirected edges until no
	vertex learns a smaller id.
*/

package components

import (
	"context"
	"errors"
	"fmt"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/message"
	"github.com/mycok/uPregel/topology"
)

// ErrNotCalculated is returned when components are requested before a
// calculation has completed.
var ErrNotCalculated = errors.New("components have not been calculated yet")

// Computation is the min-id propagation vertex program. Once the job
// converges, the value of every vertex is the smallest internal id of its
// component. The topology must contain edges in both directions for the
// result to describe weakly connected components.
type Computation struct{}

// Name implements pregel.Named.
func (Computation) Name() string { return "components" }

// Init labels every vertex with its own id.
func (Computation) Init(ctx *pregel.InitContext) error {
	ctx.SetValue(float64(ctx.VertexID()))

	return nil
}

// Compute adopts the smallest label seen so far and forwards it when it
// changed.
func (Computation) Compute(ctx *pregel.ComputeContext, msgs message.Iterator) error {
	label := ctx.Value()
	changed := ctx.IsInitialSuperstep()

	for msgs.Next() {
		if msgs.Message() < label {
			label = msgs.Message()
			changed = true
		}
	}

	if !changed {
		return nil
	}

	ctx.SetValue(label)

	return ctx.SendToNeighbors(label)
}

// Calculator computes the weakly connected components of a graph.
type Calculator struct {
	numOfWorkers int
	asynchronous bool
	builder      *topology.Builder
	graph        *topology.Graph
	result       *pregel.Result
}

// NewCalculator returns a new components calculator. When asynchronous is
// set, labels may travel more than one hop per superstep.
func NewCalculator(numOfWorkers int, asynchronous bool) (*Calculator, error) {
	if numOfWorkers <= 0 {
		return nil, fmt.Errorf("invalid value %d for compute workers, must be > 0", numOfWorkers)
	}

	return &Calculator{
		numOfWorkers: numOfWorkers,
		asynchronous: asynchronous,
		builder:      topology.NewBuilder(),
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

// Calculate labels every vertex with its component.
func (c *Calculator) Calculate(ctx context.Context) error {
	c.graph = c.builder.Build()

	concurrency := c.numOfWorkers
	if maxBatches := pregel.MaxBatchCount(c.graph.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:     c.graph,
		Computation:  Computation{},
		Asynchronous: c.asynchronous,
		Concurrency:  concurrency,
		// A label crosses at least one edge per superstep.
		MaxSupersteps: int(c.graph.VertexCount()) + 1,
	})
	if err != nil {
		return err
	}

	res, err := job.Run(ctx)
	if err != nil {
		return err
	}

	c.result = res

	return nil
}

// Components invokes visitFn with the id of every vertex and the id of the
// vertex that represents its component.
func (c *Calculator) Components(visitFn func(id, componentID string) error) error {
	if c.result == nil {
		return ErrNotCalculated
	}

	var err error
	c.result.Values.ForEach(func(vertexID int64, label float64) bool {
		id, _ := c.graph.ToOriginalID(vertexID)
		componentID, _ := c.graph.ToOriginalID(int64(label))
		err = visitFn(id, componentID)

		return err == nil
	})

	return err
}

// Count returns the number of components found by the last calculation.
func (c *Calculator) Count() (int, error) {
	if c.result == nil {
		return 0, ErrNotCalculated
	}

	var count int
	c.result.Values.ForEach(func(vertexID int64, label float64) bool {
		// Each component is represented by its smallest vertex.
		if int64(label) == vertexID {
			count++
		}

		return true
	})

	return count, nil
}
