/*
	pagerank computes PageRank scores using the pregel engine.
*/

package pagerank

import (
	"context"
	"errors"
	"fmt"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/topology"
)

// ErrNotCalculated is returned when scores are requested before a
// calculation has completed.
var ErrNotCalculated = errors.New("page ranks have not been calculated yet")

// Calculator executes the iterative version of the PageRank algorithm
// on a graph until the desired level of convergence is reached.
type Calculator struct {
	cfg     Config
	builder *topology.Builder
	graph   *topology.Graph
	result  *pregel.Result
}

// NewCalculator returns a new Calculator instance using the provided config
// options.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf(
			"PageRank calculator config validation failed: %w", err,
		)
	}

	return &Calculator{
		cfg:     cfg,
		builder: topology.NewBuilder(),
	}, nil
}

// Computation returns the vertex program used by the calculator.
func (c *Calculator) Computation() *Computation {
	return &Computation{
		DampingFactor:        c.cfg.DampingFactor,
		MinSADForConvergence: c.cfg.MinSADForConvergence,
		RedistributeDeadEnds: c.cfg.RedistributeDeadEnds,
	}
}

// Reset discards all vertices, edges and scores.
func (c *Calculator) Reset() {
	c.builder = topology.NewBuilder()
	c.graph, c.result = nil, nil
}

// AddVertex adds a new vertex / node with the specified ID into the graph.
func (c *Calculator) AddVertex(id string) {
	c.builder.AddVertex(id)
}

// AddEdge inserts a directed edge from src to dst. If both src and dst refer
// to the same vertex then this is a no-op.
func (c *Calculator) AddEdge(src, dst string) error {
	// Don't allow self-links
	if src == dst {
		return nil
	}

	return c.builder.AddEdge(src, dst, 1)
}

// VertexCount returns the number of vertices added to the calculator.
func (c *Calculator) VertexCount() int64 { return c.builder.VertexCount() }

// CalculatePageRanks runs the PageRank vertex program against the vertices
// and edges added so far.
func (c *Calculator) CalculatePageRanks(ctx context.Context) error {
	c.graph = c.builder.Build()

	res, err := Run(ctx, c.graph, c.Computation(), c.cfg)
	if err != nil {
		return err
	}

	c.result = res

	return nil
}

// Result returns the result of the last calculation or nil.
func (c *Calculator) Result() *pregel.Result { return c.result }

// Scores invokes the provided visitor function for each vertex in the graph.
func (c *Calculator) Scores(visitFn func(id string, score float64) error) error {
	if c.result == nil {
		return ErrNotCalculated
	}

	var err error
	c.result.Values.ForEach(func(vertexID int64, score float64) bool {
		id, _ := c.graph.ToOriginalID(vertexID)
		err = visitFn(id, score)

		return err == nil
	})

	return err
}

// Run executes computation against t using the job related settings of cfg.
// The number of workers is capped to what the topology can be split into.
func Run(ctx context.Context, t pregel.Topology, computation pregel.Computation, cfg Config) (*pregel.Result, error) {
	concurrency := cfg.ComputeWorkers
	if maxBatches := pregel.MaxBatchCount(t.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:      t,
		Computation:   computation,
		Concurrency:   concurrency,
		MaxSupersteps: cfg.MaxSupersteps,
		Observer:      cfg.Observer,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return job.Run(ctx)
}
