/*
	pregel is a vertex-centric graph processing engine based on the bulk
	synchronous parallel (BSP) model. A job runs a vertex program over a
	read-only topology in a sequence of supersteps separated by global
	barriers.
*/

package pregel

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/willf/bitset"

	"github.com/mycok/uPregel/pregel/aggregator"
	"github.com/mycok/uPregel/pregel/message"
	"github.com/mycok/uPregel/pregel/valuestore"
)

// Job runs a vertex program against a topology. A Job can be run multiple
// times; every run starts from a fresh value store, inbox and active set.
type Job struct {
	cfg     JobConfig
	name    string
	batches []Batch
}

// NewJob creates a new Job instance using the provided configuration. The
// configuration is validated before any vertex program is invoked.
func NewJob(cfg JobConfig) (*Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var (
		batches []Batch
		err     error
	)
	if cfg.Partitioning == DegreePartitioning {
		batches, err = PartitionByDegree(cfg.Topology, cfg.Concurrency)
	} else {
		batches, err = Partition(cfg.Topology.VertexCount(), cfg.Concurrency)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Job{
		cfg:     cfg,
		name:    computationName(cfg.Computation),
		batches: batches,
	}, nil
}

// Run executes the job for at most the configured number of supersteps.
func (j *Job) Run(ctx context.Context) (*Result, error) {
	return j.RunSteps(ctx, j.cfg.MaxSupersteps)
}

// RunSteps executes Init for every vertex followed by at most maxSupersteps
// supersteps. The run stops early when no vertex is active, when the master
// computation signals convergence or when ctx is cancelled. A cancelled run
// returns the values of the last completed superstep and a nil error.
//
// If a vertex program fails, RunSteps returns a *ComputeError and no result.
func (j *Job) RunSteps(ctx context.Context, maxSupersteps int) (*Result, error) {
	if maxSupersteps < 0 {
		return nil, fmt.Errorf(
			"%w: invalid value %d for max supersteps, must be >= 0",
			ErrInvalidConfig, maxSupersteps,
		)
	}

	r := j.newRun()
	pool := r.startWorkers(len(j.batches))
	defer pool.close()

	var (
		clk    = j.cfg.Clock
		logger = j.cfg.Logger.WithFields(logrus.Fields{
			"job_id":      r.id,
			"computation": j.name,
		})
		startedAt = clk.Now()
	)

	logger.WithFields(logrus.Fields{
		"vertex_count":   r.vertexCount,
		"concurrency":    len(j.batches),
		"partitioning":   j.cfg.Partitioning.String(),
		"asynchronous":   j.cfg.Asynchronous,
		"max_supersteps": maxSupersteps,
	}).Info("started job")

	if err := pool.execute(initPhase); err != nil {
		logger.WithField("err", err).Error("job failed")
		return nil, err
	}

	var (
		status        = MaxSuperstepsReached
		ranSupersteps int
		master, _     = j.cfg.Computation.(MasterComputation)
	)

	for r.superstep = 0; r.superstep < maxSupersteps; r.superstep++ {
		if err := ensureContextNotExpired(ctx); err != nil {
			status = Cancelled
			break
		}

		stats := StepStats{
			JobID:          r.id,
			Computation:    j.name,
			Superstep:      r.superstep,
			MaxSupersteps:  maxSupersteps,
			ActiveVertices: int64(r.active.Count()),
		}

		logger.WithFields(logrus.Fields{
			"superstep":       r.superstep,
			"active_vertices": stats.ActiveVertices,
		}).Debugf("Compute iteration %d of %d :: Start", r.superstep+1, maxSupersteps)

		j.cfg.Observer.StepStarted(stats)
		tick := clk.Now()

		if err := pool.execute(computePhase); err != nil {
			logger.WithFields(logrus.Fields{
				"superstep": r.superstep,
				"err":       err,
			}).Error("job failed")

			return nil, err
		}

		ranSupersteps++
		stats.ActiveVertices, stats.MessagesSent = r.collectStats()
		nextActive := r.prepareNextSuperstep()
		stats.Duration = clk.Now().Sub(tick)

		logger.WithFields(logrus.Fields{
			"superstep":       r.superstep,
			"active_vertices": stats.ActiveVertices,
			"messages_sent":   stats.MessagesSent,
			"duration":        stats.Duration,
		}).Debugf("Compute iteration %d of %d :: Finished", r.superstep+1, maxSupersteps)

		j.cfg.Observer.StepCompleted(stats)

		if master != nil && master.MasterCompute(&MasterContext{run: r}) {
			status = Converged
			break
		}

		if nextActive == 0 {
			status = Converged
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"status":         status,
		"ran_supersteps": ranSupersteps,
		"duration":       clk.Now().Sub(startedAt),
	}).Info("completed job")

	return &Result{
		JobID:         r.id,
		Status:        status,
		RanSupersteps: ranSupersteps,
		Values:        r.values,
	}, nil
}

// run holds the mutable state of a single job run.
type run struct {
	id          uuid.UUID
	cfg         JobConfig
	vertexCount int64
	batches     []Batch
	values      *valuestore.Store
	inbox       message.Inbox
	active      *bitset.BitSet
	aggregators map[string]aggregator.Aggregator
	stats       []batchStats

	// superstep is only written by the driving goroutine while no batch is
	// being processed.
	superstep int
}

func (j *Job) newRun() *run {
	n := j.cfg.Topology.VertexCount()

	mode := message.Synchronous
	if j.cfg.Asynchronous {
		mode = message.Asynchronous
	}

	// Every vertex is active in superstep 0.
	active := bitset.New(uint(n))
	for id := uint(0); id < uint(n); id++ {
		active.Set(id)
	}

	aggregators := make(map[string]aggregator.Aggregator)
	if ac, ok := j.cfg.Computation.(AggregatingComputation); ok {
		for name, aggr := range ac.Aggregators() {
			aggregators[name] = aggr
		}
	}

	return &run{
		id:          uuid.New(),
		cfg:         j.cfg,
		vertexCount: n,
		batches:     j.batches,
		values:      valuestore.NewFilled(n, j.cfg.InitialValue),
		inbox:       message.NewInbox(mode, n),
		active:      active,
		aggregators: aggregators,
		stats:       make([]batchStats, len(j.batches)),
	}
}

// collectStats sums up the per-batch counters of the last superstep.
func (r *run) collectStats() (processed, sent int64) {
	for _, s := range r.stats {
		processed += s.processed
		sent += s.sent
	}

	return processed, sent
}

// prepareNextSuperstep computes the active set of the next superstep and
// makes the messages sent in the current superstep visible. A vertex is
// active if it has pending messages or asked to stay active. It returns the
// size of the new active set.
func (r *run) prepareNextSuperstep() int64 {
	r.active.ClearAll()

	for vertexID := int64(0); vertexID < r.vertexCount; vertexID++ {
		if r.inbox.HasPending(vertexID) {
			r.active.Set(uint(vertexID))
		}
	}

	for _, s := range r.stats {
		for _, vertexID := range s.stayActive {
			r.active.Set(uint(vertexID))
		}
	}

	r.inbox.Advance()

	return int64(r.active.Count())
}

func computationName(c Computation) string {
	if named, ok := c.(Named); ok {
		return named.Name()
	}

	return fmt.Sprintf("%T", c)
}

func ensureContextNotExpired(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
