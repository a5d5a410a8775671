package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/joseph-ayodele/transcript-quizgen/internal/async"
	"github.com/joseph-ayodele/transcript-quizgen/internal/core"
)

// ProcessorQueue is the bounded worker pool behind Processor.Enqueue. A
// worker that fails a job relies on the processor having already persisted
// the failed record, so detachment never swallows a failure.
type ProcessorQueue struct {
	proc    *core.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan async.Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
	// enqWg counts enqueues admitted before closed was set; Shutdown waits
	// for them before closing the channel.
	enqWg sync.WaitGroup
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan async.Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc *core.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 5 * time.Minute,
		ch:      make(chan async.Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					_, err := q.proc.Process(ctx, job.DocID, core.ProcessOptions{
						Force:         job.Force,
						QuestionCount: job.QuestionCount,
					})
					cancel()

					if err != nil {
						// Already persisted as a failed record by Process.
						q.logger.Error("processing failed", "worker_id", workerID, "doc_id", job.DocID, "trace_id", job.TraceID, "error", err)
					} else {
						q.logger.Info("processed document successfully", "worker_id", workerID, "doc_id", job.DocID, "trace_id", job.TraceID, "waited_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "doc_id", job.DocID)
		return nil
	}
	q.enqWg.Add(1)
	q.mu.Unlock()
	defer q.enqWg.Done()

	// The mutex is not held across the send: a full queue blocks only this
	// caller, never Shutdown or other enqueues.
	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "doc_id", job.DocID, "force", job.Force)
	default:
		q.logger.Warn("queue full, applying backpressure", "doc_id", job.DocID)
		q.ch <- job
	}
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// Admitted enqueues finish their sends before the channel closes.
	q.enqWg.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
