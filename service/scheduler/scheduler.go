/*
	scheduler periodically reloads a topology, runs a vertex program against
	it and persists the resulting values.
*/

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/service/partition"
)

// PassSummary describes the last completed pass.
type PassSummary struct {
	JobID           uuid.UUID     `json:"job_id"`
	Computation     string        `json:"computation"`
	Status          string        `json:"status"`
	VertexCount     int64         `json:"vertex_count"`
	RanSupersteps   int           `json:"ran_supersteps"`
	CompletedAt     time.Time     `json:"completed_at"`
	LoadDuration    time.Duration `json:"load_duration"`
	ComputeDuration time.Duration `json:"compute_duration"`
	PersistDuration time.Duration `json:"persist_duration"`
	TotalDuration   time.Duration `json:"total_duration"`
}

// Service runs a computation on a fixed interval. It satisfies the
// service.Service interface.
type Service struct {
	config Config

	mu       sync.RWMutex
	lastPass *PassSummary
}

// New creates and returns a fully configured scheduler service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("scheduler service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "scheduler-" + svc.config.Name }

// LastPass returns the summary of the last completed pass.
func (svc *Service) LastPass() (PassSummary, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if svc.lastPass == nil {
		return PassSummary{}, false
	}

	return *svc.lastPass, true
}

// partitionRetryInterval is the delay between partition lookups when a
// single pass is waiting for partition data.
const partitionRetryInterval = time.Second

// Run executes the service and blocks until the context gets cancelled
// or an error occurs. With a zero update interval, Run executes a single
// pass and returns. Passes only run on the master partition.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithField(
		"update_interval", svc.config.UpdateInterval.String(),
	).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	if svc.config.UpdateInterval == 0 {
		return svc.runSinglePass(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.UpdateInterval):
			isMaster, err := svc.isMaster()
			if errors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
				continue
			} else if err != nil {
				return err
			} else if !isMaster {
				return nil
			}

			if err := svc.runPass(ctx); err != nil {
				return err
			}
		}
	}
}

func (svc *Service) runSinglePass(ctx context.Context) error {
	for {
		isMaster, err := svc.isMaster()
		if errors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
			select {
			case <-ctx.Done():
				return nil
			case <-svc.config.Clock.After(partitionRetryInterval):
				continue
			}
		} else if err != nil {
			return err
		} else if !isMaster {
			return nil
		}

		return svc.runPass(ctx)
	}
}

// isMaster reports whether this instance is assigned to partition 0.
func (svc *Service) isMaster() (bool, error) {
	currPartition, _, err := svc.config.PartitionDetector.PartitionInfo()
	if err != nil {
		if errors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
			svc.config.Logger.Warn("deferring pass: partition data not yet available")
		}

		return false, err
	}

	if currPartition != 0 {
		svc.config.Logger.Info(
			"service should only run on the master node of the application cluster",
		)

		return false, nil
	}

	return true, nil
}

// RunOnce executes a single pass regardless of the update interval and the
// partition assignment.
func (svc *Service) RunOnce(ctx context.Context) error {
	return svc.runPass(ctx)
}

func (svc *Service) runPass(ctx context.Context) error {
	svc.config.Logger.Info("started pass")

	var (
		clk       = svc.config.Clock
		startedAt = clk.Now()
		tick      = startedAt
	)

	g, err := svc.config.Loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load topology: %w", err)
	}
	loadDuration := clk.Now().Sub(tick)

	computation, err := svc.config.NewComputation(g)
	if err != nil {
		return err
	}

	concurrency := svc.config.NumOfComputeWorkers
	if maxBatches := pregel.MaxBatchCount(g.VertexCount(), 1); concurrency > maxBatches {
		concurrency = maxBatches
	}

	job, err := pregel.NewJob(pregel.JobConfig{
		Topology:      g,
		Computation:   computation,
		Asynchronous:  svc.config.Asynchronous,
		Partitioning:  svc.config.Partitioning,
		Concurrency:   concurrency,
		MaxSupersteps: svc.config.MaxSupersteps,
		Observer:      svc.config.Observer,
		Clock:         clk,
		Logger:        svc.config.Logger,
	})
	if err != nil {
		return err
	}

	tick = clk.Now()
	res, err := job.Run(ctx)
	if err != nil {
		return err
	}
	computeDuration := clk.Now().Sub(tick)

	// Values of an interrupted pass are not persisted.
	if res.Status == pregel.Cancelled {
		svc.config.Logger.WithField("job_id", res.JobID).Warn("pass cancelled")

		return nil
	}

	tick = clk.Now()
	if err := svc.config.Sink.Write(ctx, svc.config.Name, res, g); err != nil {
		return err
	}
	persistDuration := clk.Now().Sub(tick)

	summary := &PassSummary{
		JobID:           res.JobID,
		Computation:     svc.config.Name,
		Status:          res.Status.String(),
		VertexCount:     g.VertexCount(),
		RanSupersteps:   res.RanSupersteps,
		CompletedAt:     clk.Now(),
		LoadDuration:    loadDuration,
		ComputeDuration: computeDuration,
		PersistDuration: persistDuration,
		TotalDuration:   clk.Now().Sub(startedAt),
	}

	svc.mu.Lock()
	svc.lastPass = summary
	svc.mu.Unlock()

	svc.config.Logger.WithFields(logrus.Fields{
		"job_id":                summary.JobID,
		"status":                summary.Status,
		"processed_vertices":    summary.VertexCount,
		"ran_supersteps":        summary.RanSupersteps,
		"load_duration":         summary.LoadDuration,
		"computation_duration":  summary.ComputeDuration,
		"persistence_duration":  summary.PersistDuration,
		"total_processing_time": summary.TotalDuration,
	}).Info("completed pass")

	return nil
}
