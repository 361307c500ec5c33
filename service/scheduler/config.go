package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/service/partition"
	"github.com/mycok/uPregel/sink"
	"github.com/mycok/uPregel/topology"
)

//go:generate mockgen -package mocks -destination mocks/mock_loader.go github.com/mycok/uPregel/service/scheduler Loader
//go:generate mockgen -package mocks -destination mocks/mock_sink.go github.com/mycok/uPregel/sink Sink

// Loader builds the topology a pass runs against.
type Loader interface {
	Load(ctx context.Context) (*topology.Graph, error)
}

// LoaderFunc is an adapter to allow the use of ordinary functions as
// Loaders.
type LoaderFunc func(ctx context.Context) (*topology.Graph, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*topology.Graph, error) { return f(ctx) }

// ComputationFactory returns the vertex program for a freshly loaded graph.
type ComputationFactory func(g *topology.Graph) (pregel.Computation, error)

// Config defines configurations for the scheduler service.
type Config struct {
	// Name identifies the scheduled computation in logs and in the sink.
	Name string

	// Loader provides the topology for every pass.
	Loader Loader

	// Sink persists the values computed by every pass.
	Sink sink.Sink

	// NewComputation creates the vertex program for a pass.
	NewComputation ComputationFactory

	// Asynchronous selects asynchronous message delivery.
	Asynchronous bool

	// Partitioning selects how vertices are split across compute workers.
	Partitioning pregel.Partitioning

	// An API for detecting partition assignments for this service.
	PartitionDetector partition.Detector

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The number of workers to spin up for running a pass. If not
	// specified, a default value of 1 will be used instead.
	NumOfComputeWorkers int

	// MaxSupersteps bounds the supersteps of a pass.
	MaxSupersteps int

	// The duration between subsequent passes. A zero value makes Run
	// execute a single pass and return.
	UpdateInterval time.Duration

	// Observer receives per superstep statistics. Optional.
	Observer pregel.Observer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Name == "" {
		err = multierror.Append(err, fmt.Errorf("computation name not provided"))
	}

	if config.Loader == nil {
		err = multierror.Append(err, fmt.Errorf("topology loader not provided"))
	}

	if config.Sink == nil {
		err = multierror.Append(err, fmt.Errorf("result sink not provided"))
	}

	if config.NewComputation == nil {
		err = multierror.Append(err, fmt.Errorf("computation factory not provided"))
	}

	if config.PartitionDetector == nil {
		config.PartitionDetector = partition.Fixed{Partition: 0, NumOfPartitions: 1}
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.NumOfComputeWorkers == 0 {
		config.NumOfComputeWorkers = 1
	} else if config.NumOfComputeWorkers < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for compute workers, must be > 0"))
	}

	if config.MaxSupersteps <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max supersteps, must be > 0"))
	}

	if config.UpdateInterval < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for update interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
