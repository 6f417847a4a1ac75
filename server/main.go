package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phambaophuc/circle-mask/internal/config"
	"github.com/phambaophuc/circle-mask/internal/http/handlers"
	"github.com/phambaophuc/circle-mask/internal/http/routes"
	"github.com/phambaophuc/circle-mask/internal/services/codec"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/phambaophuc/circle-mask/internal/services/queue"
	"github.com/phambaophuc/circle-mask/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	edge, err := processor.ParseEdge(cfg.Mask.Edge)
	if err != nil {
		logger.Fatal("Invalid MASK_EDGE", zap.Error(err))
	}

	compression, err := codec.ParseCompression(cfg.Mask.Compression)
	if err != nil {
		logger.Fatal("Invalid PNG_COMPRESSION", zap.Error(err))
	}
	codecOpts := []codec.Option{codec.WithCompression(compression)}
	if cfg.Mask.AutoOrient {
		codecOpts = append(codecOpts, codec.WithAutoOrientation())
	}

	// Initialize services
	imageProcessor, err := processor.NewImageProcessor(
		codec.NewPNGCodec(codecOpts...),
		processor.Options{Padding: cfg.Mask.Padding, Edge: edge},
		logger.Named("processor"),
	)
	if err != nil {
		logger.Fatal("Failed to initialize image processor", zap.Error(err))
	}

	storageService, err := storage.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageService.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// The queue is optional: synchronous endpoints keep working without it.
	var jobQueue handlers.JobQueue
	queueService, err := queue.NewQueueService(cfg, imageProcessor, storageService, logger.Named("queue"))
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else {
		defer queueService.Close()
		if err := queueService.StartWorkers(ctx, cfg.RabbitMQ.Workers); err != nil {
			logger.Warn("Failed to start queue workers", zap.Error(err))
		}
		jobQueue = queueService
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(imageProcessor, storageService, jobQueue, logger, cfg)

	router := routes.NewRouter(imageHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
