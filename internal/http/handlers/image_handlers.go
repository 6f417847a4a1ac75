package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/circle-mask/internal/config"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/phambaophuc/circle-mask/internal/services/storage"
	"go.uber.org/zap"
)

const (
	maxCacheAge   = 3600
	imageParamKey = "image"
	edgeParamKey  = "edge"
)

// ImageStore is the cache, object storage and job store behind the API.
type ImageStore interface {
	GetFromCache(ctx context.Context, cacheKey string) ([]byte, error)
	SetCache(ctx context.Context, cacheKey string, data []byte) error
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	HealthCheck(ctx context.Context) map[string]string
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
}

// JobQueue accepts asynchronous circle jobs.
type JobQueue interface {
	Submit(ctx context.Context, req models.CircleRequest) (*models.ProcessingJob, error)
	HealthCheck() string
	GetQueueStats() (map[string]interface{}, error)
}

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   ImageStore
	queue     JobQueue
	logger    *zap.Logger
	config    *config.Config
}

// NewImageHandler wires the handler. storage and queue may be nil; the
// endpoints that need them then answer 503.
func NewImageHandler(
	processor *processor.ImageProcessor,
	storage ImageStore,
	queue JobQueue,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

// CircleImage crops the uploaded image to a circle, uploads the PNG and
// answers with its metadata.
func (h *ImageHandler) CircleImage(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	output, err := h.transform(c.Request.Context(), upload.data, upload.edge)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	h.respondWithURL(c, upload, output)
}

// CircleImageRaw answers with the PNG bytes directly.
func (h *ImageHandler) CircleImageRaw(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	output, err := h.transform(c.Request.Context(), upload.data, upload.edge)
	if err != nil {
		h.respondProcessingError(c, err)
		return
	}

	cacheStatus := "MISS"
	if output.cached {
		cacheStatus = "HIT"
	}
	c.Header("X-Cache", cacheStatus)
	c.Header("X-Image-Width", strconv.Itoa(output.width))
	c.Header("X-Image-Height", strconv.Itoa(output.height))
	c.Header("Cache-Control", "public, max-age="+strconv.Itoa(maxCacheAge))
	c.Data(http.StatusOK, "image/png", output.data)
}

func (h *ImageHandler) SubmitJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}
	// Job results are only reachable through their uploaded URL.
	if h.config.Supabase.URL == "" {
		h.respondError(c, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	var req models.CircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid job request: "+err.Error())
		return
	}
	if req.ImageURL != "" && req.StoragePath != "" {
		h.respondError(c, http.StatusBadRequest, "Provide either image_url or storage_path, not both")
		return
	}
	if req.Source() == "" {
		h.respondError(c, http.StatusBadRequest, "image_url or storage_path is required")
		return
	}

	job, err := h.queue.Submit(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to submit job", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to submit job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

func (h *ImageHandler) GetJob(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job store is not available")
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			h.respondError(c, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to load job", zap.String("job_id", c.Param("id")), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"redis":    "not configured",
		"supabase": "not configured",
		"rabbitmq": "not configured",
	}
	if h.storage != nil {
		for name, status := range h.storage.HealthCheck(c.Request.Context()) {
			services[name] = status
		}
	}
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := models.Stats{Timestamp: time.Now()}

	if h.storage != nil {
		cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to get cache stats", zap.Error(err))
		}
		stats.Cache = cacheStats
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
		}
		stats.Queue = queueStats
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
