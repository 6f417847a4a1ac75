package storage

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"github.com/redis/go-redis/v9"
)

func (s *StorageService) GetFromCache(ctx context.Context, cacheKey string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

func (s *StorageService) SetCache(ctx context.Context, cacheKey string, data []byte) error {
	return s.redisClient.Set(ctx, cacheKey, data, s.cacheDuration).Err()
}

// GenerateCacheKey hashes the source bytes together with the mask options,
// so the same upload cached with a hard edge is not served for smooth.
func GenerateCacheKey(data []byte, options processor.Options) string {
	hash := md5.New()
	hash.Write(data)
	hash.Write([]byte(options.Key()))

	return fmt.Sprintf("%s%x", cachePrefix, hash.Sum(nil))
}

func (s *StorageService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	info, err := s.redisClient.Info(ctx, "memory").Result()
	if err != nil {
		return nil, err
	}

	dbSize, err := s.redisClient.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	stats := map[string]interface{}{
		"db_keys": dbSize,
		"info":    info,
	}

	return stats, nil
}
