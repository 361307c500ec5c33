package pregel

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// JobConfig encapsulates the configuration options for creating jobs.
type JobConfig struct {
	// Topology is the graph the job runs against. Required.
	Topology Topology

	// Computation is the vertex program. Required.
	Computation Computation

	// Asynchronous selects the single shared inbox: messages may be
	// delivered within the superstep they were sent in. Only use it with
	// vertex programs whose result does not depend on delivery timing.
	Asynchronous bool

	// Concurrency is the number of workers and batches. It must be > 0
	// and must not exceed MaxBatchCount(vertexCount, MinBatchSize).
	Concurrency int

	// Partitioning selects how vertices are split into batches. The zero
	// value splits the vertex id range evenly.
	Partitioning Partitioning

	// MinBatchSize is the minimum number of vertices per batch. If not
	// specified, a value of 1 will be used instead.
	MinBatchSize int64

	// InitialValue is assigned to every vertex before Init is invoked.
	InitialValue float64

	// MaxSupersteps bounds the number of supersteps executed by Run. Zero
	// runs Init only.
	MaxSupersteps int

	// Observer receives per superstep statistics. Optional.
	Observer Observer

	// A clock instance for measuring superstep durations. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

// Validate checks whether a job configuration is valid and sets the default
// values where required. All detected problems are reported together.
func (cfg *JobConfig) Validate() error {
	var err error

	if cfg.Topology == nil {
		err = multierror.Append(err, errors.New("topology not provided"))
	}

	if cfg.Computation == nil {
		err = multierror.Append(err, errors.New("computation not provided"))
	}

	if cfg.MinBatchSize <= 0 {
		cfg.MinBatchSize = 1
	}

	if cfg.Concurrency <= 0 {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %d for concurrency, must be > 0", cfg.Concurrency,
		))
	} else if cfg.Topology != nil {
		maxBatches := MaxBatchCount(cfg.Topology.VertexCount(), cfg.MinBatchSize)
		if cfg.Concurrency > maxBatches {
			err = multierror.Append(err, fmt.Errorf(
				"invalid value %d for concurrency, must be <= %d for %d vertices and a minimum batch size of %d",
				cfg.Concurrency, maxBatches, cfg.Topology.VertexCount(), cfg.MinBatchSize,
			))
		}
	}

	if cfg.Partitioning != RangePartitioning && cfg.Partitioning != DegreePartitioning {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %d for partitioning", cfg.Partitioning,
		))
	}

	if cfg.MaxSupersteps < 0 {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %d for max supersteps, must be >= 0", cfg.MaxSupersteps,
		))
	}

	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
