package pregel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type phase int

const (
	initPhase phase = iota
	computePhase
)

type task struct {
	phase phase
	batch Batch
}

// batchStats is written by the worker that processes the batch and read by
// the driving goroutine after the barrier.
type batchStats struct {
	processed  int64
	sent       int64
	stayActive []int64
}

// workerPool executes init and compute phases over the job batches. Each
// phase dispatches every batch exactly once and blocks until all of them
// have been processed.
type workerPool struct {
	wg                sync.WaitGroup
	run               *run
	pendingInStep     int64
	aborted           int32
	taskChan          chan task
	errChan           chan error
	stepCompletedChan chan struct{}
}

// startWorkers spins up numOfWorkers to execute each phase.
func (r *run) startWorkers(numOfWorkers int) *workerPool {
	p := &workerPool{
		run:      r,
		taskChan: make(chan task),
		// Only the first error is kept; workers never block on emitting it.
		errChan:           make(chan error, 1),
		stepCompletedChan: make(chan struct{}),
	}

	p.wg.Add(numOfWorkers)
	for i := 0; i < numOfWorkers; i++ {
		go p.stepWorker(r.cfg.Topology.ConcurrentCopy())
	}

	return p
}

// close shuts down the workers and waits for them to exit.
func (p *workerPool) close() {
	close(p.taskChan)
	p.wg.Wait()
}

// execute dispatches all batches for the specified phase and blocks until
// every batch has been processed. It returns the first error reported by a
// worker, if any.
func (p *workerPool) execute(ph phase) error {
	batches := p.run.batches
	atomic.StoreInt64(&p.pendingInStep, int64(len(batches)))

	for _, b := range batches {
		p.taskChan <- task{phase: ph, batch: b}
	}

	// Block until the worker pool has finished processing all batches.
	<-p.stepCompletedChan

	select {
	case err := <-p.errChan:
		return err
	default:
		return nil
	}
}

// stepWorker polls the task channel and processes the vertices of each
// received batch. It exits when the task channel is closed.
func (p *workerPool) stepWorker(topology Topology) {
	defer p.wg.Done()

	var (
		initCtx    = &InitContext{vertexContext{run: p.run, topology: topology}}
		computeCtx = &ComputeContext{vertexContext: vertexContext{run: p.run, topology: topology}}
	)

	for t := range p.taskChan {
		if atomic.LoadInt32(&p.aborted) == 0 {
			var err error
			if t.phase == initPhase {
				err = p.initBatch(initCtx, t.batch)
			} else {
				err = p.computeBatch(computeCtx, t.batch)
			}

			if err != nil {
				atomic.StoreInt32(&p.aborted, 1)
				tryToEmitErr(p.errChan, err)
			}
		}

		// Only the worker that processes the last batch signals the barrier.
		if atomic.AddInt64(&p.pendingInStep, -1) == 0 {
			p.stepCompletedChan <- struct{}{}
		}
	}
}

func (p *workerPool) initBatch(ctx *InitContext, b Batch) error {
	computation := p.run.cfg.Computation

	for vertexID := b.Start; vertexID < b.End; vertexID++ {
		if atomic.LoadInt32(&p.aborted) != 0 {
			return nil
		}

		ctx.vertexID = vertexID
		if err := recoverable(func() error { return computation.Init(ctx) }); err != nil {
			return &ComputeError{Phase: PhaseInit, VertexID: vertexID, Err: err}
		}
	}

	return nil
}

func (p *workerPool) computeBatch(ctx *ComputeContext, b Batch) error {
	var (
		r           = p.run
		computation = r.cfg.Computation
		stats       = &r.stats[b.Index]
	)

	stats.processed, stats.sent = 0, 0
	stats.stayActive = stats.stayActive[:0]

	for id, ok := r.active.NextSet(uint(b.Start)); ok && int64(id) < b.End; id, ok = r.active.NextSet(id + 1) {
		if atomic.LoadInt32(&p.aborted) != 0 {
			return nil
		}

		vertexID := int64(id)
		ctx.reset(vertexID)

		msgs := r.inbox.Messages(vertexID)
		err := recoverable(func() error { return computation.Compute(ctx, msgs) })
		if err == nil {
			err = ctx.err
		}

		if err != nil {
			return &ComputeError{
				Phase:     PhaseCompute,
				Superstep: r.superstep,
				VertexID:  vertexID,
				Err:       err,
			}
		}

		stats.processed++
		stats.sent += ctx.sent
		if ctx.stayActive {
			stats.stayActive = append(stats.stayActive, vertexID)
		}
	}

	return nil
}

// recoverable invokes fn and converts a panic into an error.
func recoverable(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrVertexProgramPanic, rec)
		}
	}()

	return fn()
}

func tryToEmitErr(errChan chan<- error, err error) {
	select {
	// Try to enqueue an error.
	case errChan <- err:
	// Error channel already contains another error that has not been read yet.
	default:
	}
}
