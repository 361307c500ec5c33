package pagerank

import (
	"math"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/aggregator"
	"github.com/mycok/uPregel/pregel/message"
)

const (
	sadAggregator          = "SAD"
	residualAggregator     = "residual"
	prevResidualAggregator = "residual_prev"
)

// Static and compile-time check to ensure Computation implements the
// optional pregel interfaces it relies on.
var (
	_ pregel.MasterComputation      = (*Computation)(nil)
	_ pregel.AggregatingComputation = (*Computation)(nil)
	_ pregel.Named                  = (*Computation)(nil)
)

// Computation is the PageRank vertex program. Every vertex starts with a
// score of 1/N and stays active until the sum of absolute score differences
// (SAD) of a superstep drops below MinSADForConvergence.
type Computation struct {
	DampingFactor        float64
	MinSADForConvergence float64

	// RedistributeDeadEnds treats vertices without outgoing links as if
	// they linked to every vertex in the graph.
	RedistributeDeadEnds bool
}

// Name implements pregel.Named.
func (pc *Computation) Name() string { return "pagerank" }

// Aggregators implements pregel.AggregatingComputation.
func (pc *Computation) Aggregators() map[string]aggregator.Aggregator {
	return map[string]aggregator.Aggregator{
		sadAggregator:          new(aggregator.Float64Accumulator),
		residualAggregator:     new(aggregator.Float64Accumulator),
		prevResidualAggregator: new(aggregator.Float64Accumulator),
	}
}

// Init assigns every vertex an equal share of the total score.
func (pc *Computation) Init(ctx *pregel.InitContext) error {
	ctx.SetValue(1.0 / float64(ctx.VertexCount()))
	return nil
}

// Compute calculates the new score of a vertex and distributes it evenly to
// its neighbors.
func (pc *Computation) Compute(ctx *pregel.ComputeContext, msgs message.Iterator) error {
	pageCount := float64(ctx.VertexCount())
	score := ctx.Value()

	// Superstep 0 only distributes the initial scores.
	if !ctx.IsInitialSuperstep() {
		newScore := (1.0 - pc.DampingFactor) / pageCount
		for msgs.Next() {
			newScore += pc.DampingFactor * msgs.Message()
		}

		// Add the residual scores of the dead-ends encountered during the
		// previous superstep.
		newScore += pc.DampingFactor * ctx.Aggregator(prevResidualAggregator).Get()

		ctx.Aggregator(sadAggregator).Aggregate(math.Abs(score - newScore))
		ctx.SetValue(newScore)
		score = newScore
	}

	ctx.StayActive()

	numOutLinks := ctx.Degree()
	if numOutLinks == 0 {
		if pc.RedistributeDeadEnds {
			ctx.Aggregator(residualAggregator).Aggregate(score / pageCount)
		}

		return nil
	}

	return ctx.SendToNeighbors(score / float64(numOutLinks))
}

// MasterCompute rotates the residual aggregators and checks for
// convergence.
func (pc *Computation) MasterCompute(ctx *pregel.MasterContext) bool {
	residual := ctx.Aggregator(residualAggregator)
	ctx.Aggregator(prevResidualAggregator).Set(residual.Get())
	residual.Set(0)

	sad := ctx.Aggregator(sadAggregator)
	defer sad.Set(0)

	return ctx.Superstep() > 0 && sad.Get() < pc.MinSADForConvergence
}
