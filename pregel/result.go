package pregel

import (
	"github.com/google/uuid"

	"github.com/mycok/uPregel/pregel/valuestore"
)

// Status describes why a job stopped iterating.
type Status int

const (
	// Converged indicates that the active set became empty or that the
	// master computation signalled convergence.
	Converged Status = iota

	// MaxSuperstepsReached indicates that the superstep limit was hit.
	MaxSuperstepsReached

	// Cancelled indicates that the job's context was cancelled. The values
	// are those of the last fully completed superstep.
	Cancelled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Converged:
		return "CONVERGED"
	case MaxSuperstepsReached:
		return "MAX_SUPERSTEPS_REACHED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Result is returned by a job run that did not fail.
type Result struct {
	// JobID identifies the run in logs and metrics.
	JobID uuid.UUID

	// Status reports why the run stopped.
	Status Status

	// RanSupersteps is the number of fully completed supersteps.
	RanSupersteps int

	// Values holds one value per vertex id.
	Values *valuestore.Store
}

// DidConverge reports whether the run reached a fixed point.
func (r *Result) DidConverge() bool { return r.Status == Converged }
