package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/circle-mask/internal/models"
	"github.com/phambaophuc/circle-mask/internal/services/codec"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/phambaophuc/circle-mask/internal/services/storage"
	"github.com/phambaophuc/circle-mask/pkg/utils"
	"go.uber.org/zap"
)

type uploadedImage struct {
	filename string
	data     []byte
	edge     processor.Edge
}

type transformed struct {
	data   []byte
	width  int
	height int
	cached bool
}

// === REQUEST PARSING ===

// readUpload reads and validates the multipart image and the edge mode.
// On failure it has already written the error response.
func (h *ImageHandler) readUpload(c *gin.Context) (*uploadedImage, bool) {
	edge, err := processor.ParseEdge(c.PostForm(edgeParamKey))
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}

	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No image file provided")
		return nil, false
	}
	defer file.Close()

	maxSize := h.config.Storage.MaxFileSize
	var reader io.Reader = file
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Internal file error")
		return nil, false
	}

	if err := h.processor.ValidateImage(data, maxSize); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Invalid image: %v", err))
		return nil, false
	}

	return &uploadedImage{
		filename: header.Filename,
		data:     data,
		edge:     edge,
	}, true
}

// === PROCESSING LOGIC ===

func (h *ImageHandler) transform(ctx context.Context, data []byte, edge processor.Edge) (*transformed, error) {
	p := h.processor.WithEdge(edge)

	var cacheKey string
	if h.storage != nil {
		cacheKey = storage.GenerateCacheKey(data, p.Options())
		if cachedData, found := h.tryGetFromCache(ctx, cacheKey); found {
			cfg, _, err := codec.Config(cachedData)
			if err == nil {
				return &transformed{data: cachedData, width: cfg.Width, height: cfg.Height, cached: true}, nil
			}
			h.logger.Warn("Discarding unreadable cache entry", zap.String("cache_key", cacheKey), zap.Error(err))
		}
	}

	result, err := p.Process(data)
	if err != nil {
		return nil, err
	}

	if h.storage != nil {
		h.setCacheData(ctx, cacheKey, result.Data)
	}

	return &transformed{data: result.Data, width: result.Width, height: result.Height}, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondProcessingError maps transform failures to client or server errors.
func (h *ImageHandler) respondProcessingError(c *gin.Context, err error) {
	var perr *processor.ProcessingError
	if errors.As(err, &perr) && (perr.Stage == processor.StageDecode || perr.Stage == processor.StageMask) {
		h.respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Cannot process image: %v", perr.Err))
		return
	}

	h.logger.Error("Processing failed", zap.Error(err))
	h.respondError(c, http.StatusInternalServerError, "Failed to process image")
}

func (h *ImageHandler) respondWithURL(c *gin.Context, upload *uploadedImage, output *transformed) {
	imageURL := h.uploadToStorage(c.Request.Context(), output.data, upload.filename)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.ProcessedImage{
			ID:          uuid.New().String(),
			OriginalURL: upload.filename,
			URL:         imageURL,
			FileSize:    int64(len(output.data)),
			ProcessedAt: time.Now(),
			Edge:        string(upload.edge),
			Cached:      output.cached,
			Size: models.ImageSize{
				Width:  output.width,
				Height: output.height,
			},
		},
	})
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

// === STORAGE OPERATIONS ===

func (h *ImageHandler) uploadToStorage(ctx context.Context, data []byte, originalFilename string) string {
	if h.storage == nil {
		return ""
	}

	url, err := h.storage.Upload(ctx, data, utils.CircleFilename(originalFilename), "image/png")
	if err != nil {
		if !errors.Is(err, storage.ErrStorageNotConfigured) {
			h.logger.Warn("Failed to upload to Storage", zap.Error(err))
		}
		return ""
	}

	return url
}

func (h *ImageHandler) tryGetFromCache(ctx context.Context, cacheKey string) ([]byte, bool) {
	cachedData, err := h.storage.GetFromCache(ctx, cacheKey)
	if err != nil {
		h.logger.Warn("Cache lookup failed", zap.String("cache_key", cacheKey), zap.Error(err))
		return nil, false
	}
	if cachedData == nil {
		return nil, false
	}

	h.logger.Info("Cache hit", zap.String("cache_key", cacheKey))
	return cachedData, true
}

func (h *ImageHandler) setCacheData(ctx context.Context, cacheKey string, data []byte) {
	if err := h.storage.SetCache(ctx, cacheKey, data); err != nil {
		h.logger.Warn("Failed to cache data", zap.String("cache_key", cacheKey), zap.Error(err))
	}
}
