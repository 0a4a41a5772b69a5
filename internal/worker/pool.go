package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
)

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	JobTimeout  time.Duration
}

// Pool manages a set of background workers over one job queue.
type Pool struct {
	workers     []*Worker
	queue       queue.JobQueue
	service     workflow.Service
	workerCount int
	jobTimeout  time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewPool creates a worker pool.
func NewPool(jobQueue queue.JobQueue, service workflow.Service, cfg Config, log zerolog.Logger) *Pool {
	return &Pool{
		queue:       jobQueue,
		service:     service,
		workerCount: cfg.WorkerCount,
		jobTimeout:  cfg.JobTimeout,
		log:         log.With().Str("component", "worker_pool").Logger(),
	}
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("starting worker pool")

	p.workers = make([]*Worker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		w := NewWorker(i+1, p.queue, p.service, p.jobTimeout, p.log)
		p.workers[i] = w

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(w)
	}
}

// Stop signals all workers and waits for them to drain, bounded by a
// shutdown timeout.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping worker pool")

	for _, w := range p.workers {
		w.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all workers stopped")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("worker pool shutdown timed out")
	}
}

// GetQueueDepth returns the current queue depth.
func (p *Pool) GetQueueDepth(ctx context.Context) (int64, error) {
	return p.queue.GetQueueDepth(ctx)
}
