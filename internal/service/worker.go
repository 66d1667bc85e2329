package service

import (
	"context"
	"sync"
	"time"

	"framex/internal/infrastructure/logger"
	"framex/internal/infrastructure/metrics"
)

// JobConsumer blocks delivering dispatched job ids to the handler until the
// context is cancelled.
type JobConsumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, jobID string) error) error
}

// Processor executes one job to a terminal state.
type Processor interface {
	Execute(ctx context.Context, jobID string) error
}

// Worker runs a fixed number of consumers, each feeding dispatched job ids
// into the process orchestrator. Concurrency lives here; a single job is
// always executed sequentially.
type Worker struct {
	consumer  JobConsumer
	processor Processor
	metrics   *metrics.Metrics
	workers   int
}

func NewWorker(consumer JobConsumer, processor Processor, m *metrics.Metrics, workers int) *Worker {
	if workers < 1 {
		workers = 1
	}
	return &Worker{
		consumer:  consumer,
		processor: processor,
		metrics:   m,
		workers:   workers,
	}
}

// Run blocks until ctx is cancelled and all consumers have drained.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := w.consumer.Consume(ctx, w.handle); err != nil && ctx.Err() == nil {
				logger.Error.Printf("worker %d stopped: %v", id, err)
			}
		}(i)
	}
	logger.Info.Printf("started %d workers", w.workers)
	wg.Wait()
}

func (w *Worker) handle(ctx context.Context, jobID string) error {
	logger.Info.Printf("processing job %s", jobID)
	start := time.Now()

	err := w.processor.Execute(ctx, jobID)

	if w.metrics != nil {
		w.metrics.JobDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		w.metrics.JobsProcessed.WithLabelValues(outcome).Inc()
	}
	return err
}
