package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/circle-mask/internal/http/handlers"
	"github.com/phambaophuc/circle-mask/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images", middleware.ValidateContentType("multipart/form-data"))
		{
			images.POST("/circle", r.imageHandler.CircleImage)
			images.POST("/circle/raw", r.imageHandler.CircleImageRaw)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", middleware.ValidateContentType("application/json"), r.imageHandler.SubmitJob)
			jobs.GET("/:id", r.imageHandler.GetJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Circle mask service is running",
		})
	})

	return router
}
