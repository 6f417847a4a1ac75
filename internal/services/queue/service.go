package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/phambaophuc/circle-mask/internal/config"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Store is the part of the storage service the workers depend on.
type Store interface {
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Download(ctx context.Context, path string, maxSize int64) ([]byte, error)
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
}

type QueueService struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	logger      *zap.Logger
	queueName   string
	maxFileSize int64
	processor   *processor.ImageProcessor
	store       Store
	workers     atomic.Int32
}

func NewQueueService(
	cfg *config.Config,
	processor *processor.ImageProcessor,
	store Store,
	logger *zap.Logger,
) (*QueueService, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queueName := cfg.RabbitMQ.QueueName

	// Declare queue
	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &QueueService{
		conn:        conn,
		channel:     channel,
		logger:      logger,
		queueName:   queueName,
		maxFileSize: cfg.Storage.MaxFileSize,
		processor:   processor,
		store:       store,
	}, nil
}

// Close closes the queue connection
func (q *QueueService) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}
