package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const jobStateTimeout = 5 * time.Second

// StartWorkers starts n consumers sharing the service channel.
func (q *QueueService) StartWorkers(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	if err := q.channel.Qos(n, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	for i := 1; i <= n; i++ {
		if err := q.StartWorker(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (q *QueueService) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		q.queueName,                        // queue
		fmt.Sprintf("worker-%d", workerID), // consumer
		false,                              // auto-ack
		false,                              // exclusive
		false,                              // no-local
		false,                              // no-wait
		nil,                                // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Worker started", zap.Int("worker_id", workerID))
	q.workers.Add(1)

	go func() {
		defer q.workers.Add(-1)
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}

				q.processMessage(ctx, msg, workerID)
			}
		}
	}()

	return nil
}

// acknowledger is the subset of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (q *QueueService) processMessage(ctx context.Context, msg amqp.Delivery, workerID int) {
	q.handleDelivery(ctx, msg.Body, msg, workerID)
}

func (q *QueueService) handleDelivery(ctx context.Context, body []byte, ack acknowledger, workerID int) {
	var job models.ProcessingJob
	if err := json.Unmarshal(body, &job); err != nil || job.ID == "" {
		q.logger.Error("Failed to unmarshal job",
			zap.Error(err),
			zap.Int("worker_id", workerID))
		ack.Nack(false, false) // Don't requeue malformed messages
		return
	}

	q.logger.Info("Processing job",
		zap.String("job_id", job.ID),
		zap.Int("worker_id", workerID))

	job.Status = models.StatusProcessing
	q.storeJobResult(ctx, &job)

	result, err := q.processJob(ctx, &job)
	if err != nil && ctx.Err() != nil {
		q.logger.Warn("Job interrupted, requeueing",
			zap.String("job_id", job.ID),
			zap.Int("worker_id", workerID),
			zap.Error(err))
		if err := ack.Nack(false, true); err != nil {
			q.logger.Error("Failed to requeue message",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
		job.Status = models.StatusPending
		q.storeJobResult(ctx, &job)
		return
	}
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		q.logger.Error("Job processing failed",
			zap.String("job_id", job.ID),
			zap.Error(err))
	} else {
		job.Status = models.StatusCompleted
		job.Result = result
		q.logger.Info("Job completed successfully",
			zap.String("job_id", job.ID))
	}

	if err := ack.Ack(false); err != nil {
		q.logger.Error("Failed to ack message",
			zap.String("job_id", job.ID),
			zap.Error(err))
	}

	q.storeJobResult(ctx, &job)
}

// storeJobResult persists job state even when the worker context has
// been cancelled.
func (q *QueueService) storeJobResult(ctx context.Context, job *models.ProcessingJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobStateTimeout)
	defer cancel()

	job.UpdatedAt = time.Now()
	if err := q.store.SaveJob(ctx, job); err != nil {
		q.logger.Warn("Failed to store job state",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(err))
	}
}
