package pagerank

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/pregel"
)

// Config encapsulates the required parameters for creating a new PageRank
// calculator instance.
type Config struct {
	// DampingFactor is the probability that a random surfer follows an
	// outgoing link. If not specified, a default value of 0.85 will be used
	// instead.
	DampingFactor float64

	// MinSADForConvergence is the sum of absolute score differences below
	// which the calculation is considered converged. If not specified, a
	// default value of 1e-7 will be used instead.
	MinSADForConvergence float64

	// RedistributeDeadEnds spreads the score of vertices without outgoing
	// links across the whole graph.
	RedistributeDeadEnds bool

	// ComputeWorkers is the number of workers to spin up for computing
	// PageRank scores. If not specified, a default value of 1 will be used
	// instead. The value is capped to the number of vertices.
	ComputeWorkers int

	// MaxSupersteps bounds the number of iterations. If not specified, a
	// default value of 20 will be used instead.
	MaxSupersteps int

	// Observer receives per superstep statistics. Optional.
	Observer pregel.Observer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (c *Config) validate() error {
	var err error

	if c.DampingFactor == 0 {
		c.DampingFactor = 0.85
	} else if c.DampingFactor < 0 || c.DampingFactor > 1 {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %v for damping factor, must be in [0, 1]", c.DampingFactor,
		))
	}

	if c.MinSADForConvergence == 0 {
		c.MinSADForConvergence = 1e-7
	} else if c.MinSADForConvergence < 0 {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %v for SAD convergence threshold, must be > 0", c.MinSADForConvergence,
		))
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	if c.MaxSupersteps == 0 {
		c.MaxSupersteps = 20
	} else if c.MaxSupersteps < 0 {
		err = multierror.Append(err, fmt.Errorf(
			"invalid value %d for max supersteps, must be > 0", c.MaxSupersteps,
		))
	}

	if c.Logger == nil {
		c.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
