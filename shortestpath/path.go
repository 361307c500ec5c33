/*
	shortestpath computes single-source shortest paths on graphs with
	non-negative edge costs by relaxing distances asynchronously on the
	pregel engine.
*/

package shortestpath

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/message"
	"github.com/mycok/uPregel/topology"
)

var (
	// Unreached is the distance of vertices that cannot be reached from the
	// source vertex.
	Unreached = math.Inf(1)

	// ErrUnreachable is returned when no path to a vertex exists.
	ErrUnreachable = errors.New("vertex is not reachable from the source")

	// ErrNotCalculated is returned when paths are requested before a
	// calculation has completed.
	ErrNotCalculated = errors.New("shortest paths have not been calculated yet")
)

// Computation is the shortest path vertex program. The value of every vertex
// is its distance from Source.
type Computation struct {
	Source int64

	// HopCount ignores edge weights and counts every edge as 1.
	HopCount bool
}

// Name implements pregel.Named.
func (sc *Computation) Name() string { return "shortestpath" }

// Init assigns a zero distance to the source and Unreached to everyone else.
func (sc *Computation) Init(ctx *pregel.InitContext) error {
	if ctx.VertexID() == sc.Source {
		ctx.SetValue(0)
	} else {
		ctx.SetValue(Unreached)
	}

	return nil
}

// Compute keeps the smallest announced distance and, if it improved,
// announces it to all neighbors.
func (sc *Computation) Compute(ctx *pregel.ComputeContext, msgs message.Iterator) error {
	minDistance := ctx.Value()
	improved := ctx.IsInitialSuperstep() && ctx.VertexID() == sc.Source

	for msgs.Next() {
		if msgs.Message() < minDistance {
			minDistance = msgs.Message()
			improved = true
		}
	}

	// The vertex is done unless it receives a better path announcement.
	if !improved {
		return nil
	}

	ctx.SetValue(minDistance)

	return ctx.SendToNeighborsWeighted(minDistance, sc.edgeCost)
}

func (sc *Computation) edgeCost(distance, weight float64) float64 {
	if sc.HopCount {
		return distance + 1
	}

	return distance + weight
}

// Calculator is a shortest path calculator from a single vertex to
// all other vertices in a graph.
type Calculator struct {
	numOfWorkers int
	hopCount     bool
	builder      *topology.Builder
	graph        *topology.Graph
	computation  *Computation
	result       *pregel.Result
	srcID        int64
}

// NewCalculator returns a new shortest path calculator.
func NewCalculator(numOfWorkers int) (*Calculator, error) {
	if numOfWorkers <= 0 {
		return nil, fmt.Errorf("invalid value %d for compute workers, must be > 0", numOfWorkers)
	}

	return &Calculator{
		numOfWorkers: numOfWorkers,
		builder:      topology.NewBuilder(),
	}, nil
}

// CountHops makes subsequent calculations ignore edge costs and count every
// edge as 1. Paths are built with the mode of the last calculation.
func (c *Calculator) CountHops(enabled bool) {
	c.hopCount = enabled
}

// AddVertex adds a new vertex / node with the specified ID into the graph.
func (c *Calculator) AddVertex(id string) {
	c.builder.AddVertex(id)
}

// AddEdge adds a directed edge from srcID to dstID with the specified cost.
// An error will be returned if a negative or NaN cost value is provided.
func (c *Calculator) AddEdge(srcID string, destID string, cost float64) error {
	if math.IsNaN(cost) {
		return fmt.Errorf("NaN edge costs not supported")
	} else if cost < 0 {
		return fmt.Errorf("negative edge costs not supported")
	}

	return c.builder.AddEdge(srcID, destID, cost)
}

// CalculateShortestPaths calculates the shortest path from the source vertex
// to all other vertices in the graph.
func (c *Calculator) CalculateShortestPaths(ctx context.Context, srcID string) error {
	c.graph = c.builder.Build()

	src, exists := c.graph.ToInternalID(srcID)
	if !exists {
		return fmt.Errorf("unknown source vertex with ID %q", srcID)
	}

	concurrency := c.numOfWorkers
	if maxBatches := pregel.MaxBatchCount(c.graph.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	computation := &Computation{Source: src, HopCount: c.hopCount}
	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:     c.graph,
		Computation:  computation,
		Asynchronous: true,
		Concurrency:  concurrency,
		// Every superstep settles at least one more vertex.
		MaxSupersteps: int(c.graph.VertexCount()) + 1,
	})
	if err != nil {
		return err
	}

	res, err := job.Run(ctx)
	if err != nil {
		return err
	}

	c.srcID, c.computation, c.result = src, computation, res

	return nil
}

// Distance returns the cost of the shortest path from the source vertex to
// the specified destination.
func (c *Calculator) Distance(destID string) (float64, error) {
	if c.result == nil {
		return 0, ErrNotCalculated
	}

	dest, exists := c.graph.ToInternalID(destID)
	if !exists {
		return 0, fmt.Errorf("unknown vertex with ID %q", destID)
	}

	return c.result.Values.Get(dest), nil
}

// BuildShortestPathTo builds vertices / nodes that represent the shortest path
// from the source vertex / node to the specified destination. Among equally
// short paths, the one with the fewest edges is returned.
func (c *Calculator) BuildShortestPathTo(destID string) ([]string, float64, error) {
	distance, err := c.Distance(destID)
	if err != nil {
		return nil, 0, err
	} else if math.IsInf(distance, 1) {
		return nil, 0, fmt.Errorf("path to %q: %w", destID, ErrUnreachable)
	}

	dest, _ := c.graph.ToInternalID(destID)
	parents := c.shortestPathTree(dest)

	var path []string
	for v := dest; ; {
		id, _ := c.graph.ToOriginalID(v)
		path = append(path, id)

		if v == c.srcID {
			break
		}

		parent, found := parents[v]
		if !found {
			return nil, 0, fmt.Errorf("path to %q: %w", destID, ErrUnreachable)
		}
		v = parent
	}

	// Reverse path slice in place to form path from src->dst
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, distance, nil
}

// shortestPathTree walks the edges that lie on shortest paths breadth first
// from the source until dest is reached. Each vertex is visited once, so
// zero cost cycles terminate. The returned map holds the parent of every
// visited vertex.
func (c *Calculator) shortestPathTree(dest int64) map[int64]int64 {
	var (
		values  = c.result.Values
		cost    = c.computation.edgeCost
		parents = map[int64]int64{c.srcID: c.srcID}
		queue   = []int64{c.srcID}
	)

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dest {
			break
		}

		distance := values.Get(u)
		c.graph.ForEachNeighbor(u, func(v int64, weight float64) bool {
			if _, visited := parents[v]; !visited && cost(distance, weight) == values.Get(v) {
				parents[v] = u
				queue = append(queue, v)
			}

			return true
		})
	}

	return parents
}
