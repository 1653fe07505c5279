package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// JobHandler processes a single combine job.
type JobHandler func(ctx context.Context, job CombineJob) error

// ConsumerConfig configures a job consumer.
type ConsumerConfig struct {
	MaxConcurrent  int
	MaxMessages    int
	ReceiveTimeout time.Duration
	Logger         logging.Logger
}

// Consumer runs a pool of workers that receive jobs from a Queue and
// hand them to a JobHandler. A handler error abandons the delivery so
// the queue redelivers it; success completes it.
type Consumer struct {
	queue    Queue
	config   ConsumerConfig
	handler  JobHandler
	wg       sync.WaitGroup
	stopChan chan struct{}
	logger   logging.Logger
}

// NewConsumer creates a consumer over queue. The consumer does not
// own the queue; closing it stays with the caller.
func NewConsumer(queue Queue, config ConsumerConfig, handler JobHandler) *Consumer {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if config.MaxMessages <= 0 {
		config.MaxMessages = 10
	}
	if config.ReceiveTimeout == 0 {
		config.ReceiveTimeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}

	return &Consumer{
		queue:    queue,
		config:   config,
		handler:  handler,
		stopChan: make(chan struct{}),
		logger:   config.Logger,
	}
}

// Start starts the worker pool.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Starting combine job consumer",
		logging.NewField("concurrency", c.config.MaxConcurrent),
	)

	for i := 0; i < c.config.MaxConcurrent; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i)
	}

	return nil
}

// worker is a single worker goroutine that receives and processes jobs.
func (c *Consumer) worker(ctx context.Context, workerID int) {
	defer c.wg.Done()

	logger := c.logger.With(logging.NewField("worker", workerID))
	logger.Info("Worker started")

	for {
		select {
		case <-c.stopChan:
			logger.Info("Worker stopping")
			return
		case <-ctx.Done():
			logger.Info("Worker stopping (context cancelled)")
			return
		default:
			receiveCtx, cancel := context.WithTimeout(ctx, c.config.ReceiveTimeout)
			deliveries, err := c.queue.Receive(receiveCtx, c.config.MaxMessages)
			cancel()

			if err != nil {
				logger.Error("Failed to receive jobs", logging.NewField("error", err))
				time.Sleep(1 * time.Second) // Back off on error
				continue
			}

			for _, delivery := range deliveries {
				jobLogger := logger.With(
					logging.NewField("jobID", delivery.Job.ID),
					logging.NewField("attempt", delivery.Attempts),
				)

				if err := c.handler(ctx, delivery.Job); err != nil {
					jobLogger.Error("Job handler failed", logging.NewField("error", err))
					// Abandon the job so it can be retried
					if abandonErr := delivery.Abandon(ctx); abandonErr != nil {
						jobLogger.Error("Failed to abandon job", logging.NewField("error", abandonErr))
					}
					continue
				}

				if completeErr := delivery.Complete(ctx); completeErr != nil {
					jobLogger.Error("Failed to complete job", logging.NewField("error", completeErr))
				} else {
					jobLogger.Debug("Job processed successfully")
				}
			}
		}
	}
}

// Stop gracefully stops the consumer.
func (c *Consumer) Stop(ctx context.Context) error {
	c.logger.Info("Stopping combine job consumer")

	close(c.stopChan)

	// Wait for all workers to finish with timeout
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("All workers stopped")
	case <-ctx.Done():
		c.logger.Warn("Timeout waiting for workers to stop")
	case <-time.After(30 * time.Second):
		c.logger.Warn("Timeout waiting for workers to stop")
	}

	return nil
}
