package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Submit records a pending job for req and publishes it to the workers.
func (q *QueueService) Submit(ctx context.Context, req models.CircleRequest) (*models.ProcessingJob, error) {
	now := time.Now()
	job := &models.ProcessingJob{
		ID:        uuid.New().String(),
		Request:   req,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := q.store.SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to store job: %w", err)
	}

	if err := q.PublishJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (q *QueueService) PublishJob(ctx context.Context, job *models.ProcessingJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    job.ID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	q.logger.Info("Job published to queue", zap.String("job_id", job.ID))
	return nil
}
