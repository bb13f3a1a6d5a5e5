package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/pipeline"
)

// Comparer is the part of pipeline.Processor the workers need.
type Comparer interface {
	CompareFiles(ctx context.Context, poPath, invoicePath string) (*pipeline.Result, error)
}

// ResultHandler receives every finished job, successful or not. It is called
// from worker goroutines and must be safe for concurrent use.
type ResultHandler func(ctx context.Context, job Job, res *pipeline.Result, err error)

type ProcessorQueue struct {
	proc    Comparer
	handle  ResultHandler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
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
			q.ch = make(chan Job, n)
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

func WithResultHandler(h ResultHandler) Option {
	return func(q *ProcessorQueue) { q.handle = h }
}

func NewProcessorQueue(proc Comparer, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
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
				q.logger.Debug("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.process(workerID, job)
				}
				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.ID != "" {
		ctx = common.WithRequestID(ctx, job.ID)
	}

	start := time.Now()
	res, err := q.proc.CompareFiles(ctx, job.POPath, job.InvoicePath)
	if err != nil {
		q.logger.Error("async.job.failed", "worker_id", workerID, "job_id", job.ID,
			"po", job.POPath, "invoice", job.InvoicePath, "code", common.ErrorCode(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
	} else {
		q.logger.Info("async.job.ok", "worker_id", workerID, "job_id", job.ID,
			"overall_flag", res.Report.OverallFlag, "elapsed_ms", time.Since(start).Milliseconds())
	}
	if q.handle != nil {
		q.handle(ctx, job, res, err)
	}
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("async.enqueue.closed", "job_id", job.ID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("async.enqueue.ok", "job_id", job.ID)
	default:
		q.logger.Warn("async.enqueue.backpressure", "job_id", job.ID)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for queued jobs to finish or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Info("async.shutdown.drained")
	}
}
