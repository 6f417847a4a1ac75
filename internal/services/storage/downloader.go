package storage

import (
	"context"
	"fmt"
)

// Download reads a source image from the bucket, enforcing maxSize.
func (s *StorageService) Download(ctx context.Context, path string, maxSize int64) ([]byte, error) {
	if s.sbClient == nil {
		return nil, ErrStorageNotConfigured
	}

	data, err := s.sbClient.DownloadFile(s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from supabase: %w", path, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed size %d", len(data), maxSize)
	}
	return data, nil
}
