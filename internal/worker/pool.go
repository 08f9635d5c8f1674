// Package worker bounds how many documents are processed concurrently. The
// queue subscription feeds jobs in; a fixed set of workers drains them, so a
// burst of uploads turns into queue depth instead of unbounded goroutines.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dartos/dartos/internal/core/ports"
	"github.com/dartos/dartos/internal/observability/metrics"
)

const defaultJobTimeout = 5 * time.Minute

type job struct {
	documentID string
	enqueuedAt time.Time
}

type Pool struct {
	processor  ports.DocumentProcessor
	metrics    *metrics.WorkerMetrics
	jobs       chan job
	size       int
	jobTimeout time.Duration
	logger     *slog.Logger
}

// NewPool builds a pool of size workers over a queue of queueDepth pending
// jobs. Both default sensibly when non-positive.
func NewPool(processor ports.DocumentProcessor, m *metrics.WorkerMetrics, size, queueDepth int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = 4
	}
	if queueDepth <= 0 {
		queueDepth = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		processor:  processor,
		metrics:    m,
		jobs:       make(chan job, queueDepth),
		size:       size,
		jobTimeout: defaultJobTimeout,
		logger:     logger,
	}
}

// Submit enqueues a document for processing. When the queue is full it
// blocks, so the subscription cannot outrun the workers.
func (p *Pool) Submit(ctx context.Context, documentID string) error {
	j := job{documentID: documentID, enqueuedAt: time.Now()}
	select {
	case p.jobs <- j:
		if p.metrics != nil {
			p.metrics.SetQueueDepth(len(p.jobs))
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("submit document %s: %w", documentID, ctx.Err())
	}
}

// Run blocks until ctx is cancelled and all workers have drained.
func (p *Pool) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		group.Go(func() error {
			p.work(groupCtx)
			return nil
		})
	}
	return group.Wait()
}

func (p *Pool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			p.runJob(ctx, j)
		}
	}
}

func (p *Pool) runJob(ctx context.Context, j job) {
	if p.metrics != nil {
		p.metrics.StartDocument()
		p.metrics.ObserveQueueLag(time.Since(j.enqueuedAt))
		p.metrics.SetQueueDepth(len(p.jobs))
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	start := time.Now()
	err := p.processor.ProcessByID(jobCtx, j.documentID)
	if p.metrics != nil {
		p.metrics.FinishDocument(time.Since(start), err)
	}
	if err != nil {
		p.logger.Error("document processing job failed", "doc_id", j.documentID, "error", err)
	}
}
