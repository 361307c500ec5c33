package pregel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a job configuration is rejected.
	ErrInvalidConfig = errors.New("invalid job configuration")

	// ErrVertexOutOfRange is returned when a vertex program addresses a
	// vertex id outside of [0, vertexCount).
	ErrVertexOutOfRange = errors.New("vertex id out of range")

	// ErrVertexProgramPanic is wrapped by the ComputeError reported for a
	// vertex program that panicked.
	ErrVertexProgramPanic = errors.New("vertex program panicked")
)

// Phase identifies the vertex program hook that failed.
type Phase string

const (
	// PhaseInit identifies failures in Computation.Init.
	PhaseInit Phase = "init"

	// PhaseCompute identifies failures in Computation.Compute.
	PhaseCompute Phase = "compute"
)

// ComputeError is returned when a vertex program fails. The job is aborted
// and the value store at the point of failure is discarded.
type ComputeError struct {
	Phase     Phase
	Superstep int
	VertexID  int64
	Err       error
}

// Error implements the error interface.
func (e *ComputeError) Error() string {
	if e.Phase == PhaseInit {
		return fmt.Sprintf(
			"running init function for vertex %d failed: %v", e.VertexID, e.Err,
		)
	}

	return fmt.Sprintf(
		"running compute function for vertex %d in superstep %d failed: %v",
		e.VertexID, e.Superstep, e.Err,
	)
}

// Unwrap returns the underlying vertex program error.
func (e *ComputeError) Unwrap() error { return e.Err }
