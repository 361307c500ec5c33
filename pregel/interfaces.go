package pregel

//go:generate mockgen -package mocks -destination mocks/mock_observer.go github.com/mycok/uPregel/pregel Observer

import (
	"time"

	"github.com/google/uuid"

	"github.com/mycok/uPregel/pregel/aggregator"
	"github.com/mycok/uPregel/pregel/message"
)

// Topology is implemented by the read-only graph structure a job runs
// against. Vertex ids are dense and lie in [0, VertexCount()).
type Topology interface {
	// VertexCount returns the number of vertices in the graph.
	VertexCount() int64

	// Degree returns the number of outgoing edges of the vertex.
	Degree(vertexID int64) int

	// ForEachNeighbor invokes fn for each outgoing edge of the vertex until
	// fn returns false.
	ForEachNeighbor(vertexID int64, fn func(targetID int64, weight float64) bool)

	// ConcurrentCopy returns a traversal handle that a single worker can use
	// while other workers use their own copies.
	ConcurrentCopy() Topology
}

// IDMapper is optionally implemented by topologies that assign internal ids
// to externally visible vertex ids.
type IDMapper interface {
	// ToOriginalID returns the external id of an internal vertex id.
	ToOriginalID(vertexID int64) (string, bool)

	// ToInternalID returns the internal vertex id of an external id.
	ToInternalID(originalID string) (int64, bool)
}

// Computation is implemented by vertex programs. Both hooks are invoked by the
// job; Init once per vertex before superstep 0 and Compute once per vertex
// activation.
type Computation interface {
	// Init seeds the vertex value.
	Init(ctx *InitContext) error

	// Compute runs the vertex program for a single active vertex. msgs holds
	// the messages delivered to the vertex and is empty in superstep 0
	// for synchronous jobs.
	Compute(ctx *ComputeContext, msgs message.Iterator) error
}

// MasterComputation is optionally implemented by computations that need to
// run logic on the driving goroutine after every superstep.
type MasterComputation interface {
	// MasterCompute is invoked once all workers have completed a superstep.
	// Returning true marks the job as converged.
	MasterCompute(ctx *MasterContext) bool
}

// AggregatingComputation is optionally implemented by computations that use
// aggregators. Aggregators is invoked once per run so every run starts with
// fresh aggregator instances.
type AggregatingComputation interface {
	Aggregators() map[string]aggregator.Aggregator
}

// Named is optionally implemented by computations to provide a name for
// logging and metrics.
type Named interface {
	Name() string
}

// ComputationFuncs is an adapter that allows the use of ordinary functions as
// a Computation. A nil InitFn leaves the initial value untouched.
type ComputationFuncs struct {
	InitFn    func(ctx *InitContext) error
	ComputeFn func(ctx *ComputeContext, msgs message.Iterator) error
}

// Init calls InitFn if defined.
func (f ComputationFuncs) Init(ctx *InitContext) error {
	if f.InitFn == nil {
		return nil
	}

	return f.InitFn(ctx)
}

// Compute calls ComputeFn.
func (f ComputationFuncs) Compute(ctx *ComputeContext, msgs message.Iterator) error {
	return f.ComputeFn(ctx, msgs)
}

// StepStats describes a single superstep. Observers receive it for logging
// and telemetry purposes only.
type StepStats struct {
	JobID          uuid.UUID
	Computation    string
	Superstep      int
	MaxSupersteps  int
	ActiveVertices int64
	MessagesSent   int64
	Duration       time.Duration
}

// Observer is implemented by types that want to be notified about the
// progress of a job. Observers are invoked from the driving goroutine and
// cannot influence the job's control flow.
type Observer interface {
	// StepStarted is invoked before a superstep is dispatched to the workers.
	// Only the identification and ActiveVertices fields are populated.
	StepStarted(stats StepStats)

	// StepCompleted is invoked after the superstep barrier.
	StepCompleted(stats StepStats)
}

type nopObserver struct{}

func (nopObserver) StepStarted(StepStats)   {}
func (nopObserver) StepCompleted(StepStats) {}
