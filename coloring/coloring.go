/*
	coloring assigns colors to the vertices of an undirected graph so that no
	two neighbors share a color. Vertices pick colors in the order of randomly
	assigned tokens: an uncolored vertex picks the smallest color unused by its
	neighbors once it holds the highest token among its uncolored neighbors.
*/

package coloring

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/message"
	"github.com/mycok/uPregel/topology"
)

// Computation is the graph coloring vertex program. The value of a vertex
// is its color; 0 means the vertex has not been colored yet.
//
// Messages carry either the sender's token (a positive value) while the
// sender is uncolored or the negated color once it picked one.
type Computation struct {
	tokens     []float64
	preColored map[int64]int

	// usedColors[v] is only accessed while processing vertex v.
	usedColors []map[int]bool
}

// NewComputation returns a coloring vertex program for a graph with
// vertexCount vertices. Tokens are a random permutation drawn from rnd.
func NewComputation(vertexCount int64, preColored map[int64]int, rnd *rand.Rand) *Computation {
	tokens := make([]float64, vertexCount)
	for i, p := range rnd.Perm(int(vertexCount)) {
		tokens[i] = float64(p + 1)
	}

	return &Computation{
		tokens:     tokens,
		preColored: preColored,
		usedColors: make([]map[int]bool, vertexCount),
	}
}

// Name implements pregel.Named.
func (cc *Computation) Name() string { return "coloring" }

// Init assigns pre-selected colors.
func (cc *Computation) Init(ctx *pregel.InitContext) error {
	ctx.SetValue(float64(cc.preColored[ctx.VertexID()]))

	return nil
}

// Compute implements pregel.Computation.
func (cc *Computation) Compute(ctx *pregel.ComputeContext, msgs message.Iterator) error {
	vertexID := ctx.VertexID()
	color := int(ctx.Value())

	if ctx.IsInitialSuperstep() {
		switch {
		case color != 0:
			// Announce the pre-selected color and halt.
			return ctx.SendToNeighbors(float64(-color))
		case ctx.Degree() == 0:
			ctx.SetValue(1)
			return nil
		}

		cc.usedColors[vertexID] = make(map[int]bool)

		return ctx.SendToNeighbors(cc.tokens[vertexID])
	}

	// Colored vertices ignore the tokens of their neighbors.
	if color != 0 {
		return nil
	}

	var (
		used       = cc.usedColors[vertexID]
		token      = cc.tokens[vertexID]
		shouldPick = true
	)

	for msgs.Next() {
		msg := msgs.Message()
		if msg < 0 {
			used[int(-msg)] = true
		} else if token < msg {
			shouldPick = false
		}
	}

	// Keep announcing our token until it is our turn to pick a color.
	if !shouldPick {
		return ctx.SendToNeighbors(token)
	}

	for nextColor := 1; ; nextColor++ {
		if used[nextColor] {
			continue
		}

		ctx.SetValue(float64(nextColor))
		cc.usedColors[vertexID] = nil

		return ctx.SendToNeighbors(float64(-nextColor))
	}
}

// Assigner is a vertex color assigning object.
type Assigner struct {
	numOfWorkers int
	builder      *topology.Builder
	preColored   map[string]int
	rnd          *rand.Rand
}

// NewColorAssigner configures and returns a new color Assigner instance.
// The seed makes the token assignment, and therefore the coloring,
// reproducible.
func NewColorAssigner(numOfWorkers int, seed int64) (*Assigner, error) {
	if numOfWorkers <= 0 {
		return nil, fmt.Errorf("invalid value %d for compute workers, must be > 0", numOfWorkers)
	}

	return &Assigner{
		numOfWorkers: numOfWorkers,
		builder:      topology.NewBuilder(),
		preColored:   make(map[string]int),
		rnd:          rand.New(rand.NewSource(seed)),
	}, nil
}

// AddVertex adds a new vertex / node with the specified ID into the graph.
func (a *Assigner) AddVertex(id string) {
	a.AddPreColoredVertex(id, 0)
}

// AddPreColoredVertex adds a new vertex / node with the specified ID and color
// into the graph. Pre-colored vertices keep their color.
func (a *Assigner) AddPreColoredVertex(id string, color int) {
	a.builder.AddVertex(id)
	if color != 0 {
		a.preColored[id] = color
	}
}

// AddEdge connects srcID and destID. Colors are assigned on the undirected
// version of the graph so a reverse edge is added as well.
func (a *Assigner) AddEdge(srcID, destID string) error {
	return a.builder.AddUndirectedEdge(srcID, destID, 1)
}

// AssignColors executes the assigner which in turn invokes a user-defined
// visitor function for each vertex in the graph. It returns the highest
// color that was assigned.
func (a *Assigner) AssignColors(
	ctx context.Context, visitor func(vertexID string, color int),
) (int, error) {

	g := a.builder.Build()

	preColored := make(map[int64]int, len(a.preColored))
	for id, color := range a.preColored {
		vertexID, _ := g.ToInternalID(id)
		preColored[vertexID] = color
	}

	concurrency := a.numOfWorkers
	if maxBatches := pregel.MaxBatchCount(g.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:    g,
		Computation: NewComputation(g.VertexCount(), preColored, a.rnd),
		Concurrency: concurrency,
		// Every superstep after the first colors at least one vertex.
		MaxSupersteps: int(g.VertexCount()) + 2,
	})
	if err != nil {
		return 0, err
	}

	res, err := job.Run(ctx)
	if err != nil {
		return 0, err
	} else if !res.DidConverge() {
		return 0, fmt.Errorf("color assignment stopped with status %s", res.Status)
	}

	var totalAssignedColors int
	res.Values.ForEach(func(vertexID int64, value float64) bool {
		color := int(value)
		if color > totalAssignedColors {
			totalAssignedColors = color
		}

		id, _ := g.ToOriginalID(vertexID)
		visitor(id, color)

		return true
	})

	return totalAssignedColors, nil
}
