package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/phambaophuc/circle-mask/internal/services/codec"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/phambaophuc/circle-mask/internal/services/storage"
	"github.com/phambaophuc/circle-mask/pkg/utils"
	"go.uber.org/zap"
)

var errNoSource = errors.New("job has neither image_url nor storage_path")

func (q *QueueService) processJob(ctx context.Context, job *models.ProcessingJob) (*models.ProcessedImage, error) {
	edge, err := processor.ParseEdge(job.Request.Edge)
	if err != nil {
		return nil, err
	}
	p := q.processor.WithEdge(edge)

	source, err := q.fetchSource(ctx, job.Request)
	if err != nil {
		return nil, err
	}

	cacheKey := storage.GenerateCacheKey(source, p.Options())

	output, err := q.store.GetFromCache(ctx, cacheKey)
	if err != nil {
		q.logger.Warn("Cache lookup failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	cached := output != nil

	if !cached {
		result, err := p.Process(source)
		if err != nil {
			return nil, fmt.Errorf("failed to process image: %w", err)
		}
		output = result.Data

		if err := q.store.SetCache(ctx, cacheKey, output); err != nil {
			q.logger.Warn("Failed to cache result", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	cfg, _, err := codec.Config(output)
	if err != nil {
		return nil, fmt.Errorf("failed to read processed image: %w", err)
	}

	url, err := q.store.Upload(ctx, output, utils.CircleFilename(job.Request.Source()), "image/png")
	if err != nil {
		return nil, fmt.Errorf("failed to save processed image: %w", err)
	}

	return &models.ProcessedImage{
		ID:          uuid.New().String(),
		OriginalURL: job.Request.Source(),
		ProcessedAt: time.Now(),
		Size: models.ImageSize{
			Width:  cfg.Width,
			Height: cfg.Height,
		},
		Edge:     string(edge),
		URL:      url,
		FileSize: int64(len(output)),
		Cached:   cached,
	}, nil
}

func (q *QueueService) fetchSource(ctx context.Context, req models.CircleRequest) ([]byte, error) {
	switch {
	case req.ImageURL != "":
		data, _, err := utils.DownloadImage(ctx, req.ImageURL, q.maxFileSize)
		if err != nil {
			return nil, err
		}
		return data, nil
	case req.StoragePath != "":
		return q.store.Download(ctx, req.StoragePath, q.maxFileSize)
	default:
		return nil, errNoSource
	}
}
