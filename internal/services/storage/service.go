package storage

import (
	"time"

	"github.com/phambaophuc/circle-mask/internal/config"
	"github.com/redis/go-redis/v9"
	storage_go "github.com/supabase-community/storage-go"
)

const (
	cachePrefix = "circle_cache:"
	jobPrefix   = "circle_job:"
)

// StorageService keeps processed PNGs in Supabase Storage and uses Redis
// for the output cache and job status records. Supabase is optional: with
// no URL configured uploads are skipped.
type StorageService struct {
	sbClient      *storage_go.Client
	redisClient   *redis.Client
	bucket        string
	cacheDuration time.Duration
	jobTTL        time.Duration
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var sbClient *storage_go.Client
	if cfg.Supabase.URL != "" {
		sbClient = storage_go.NewClient(cfg.Supabase.URL+"/storage/v1", cfg.Supabase.KEY, nil)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &StorageService{
		sbClient:      sbClient,
		redisClient:   redisClient,
		bucket:        cfg.Supabase.BUCKET,
		cacheDuration: cfg.Storage.CacheDuration,
		jobTTL:        cfg.Storage.JobTTL,
	}, nil
}

// Close releases the Redis connection pool.
func (s *StorageService) Close() error {
	return s.redisClient.Close()
}
