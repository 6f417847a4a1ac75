package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/phambaophuc/circle-mask/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

var ErrStorageNotConfigured = errors.New("object storage not configured")

// Upload stores data under a unique key derived from filename and returns
// its public URL.
func (s *StorageService) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if s.sbClient == nil {
		return "", ErrStorageNotConfigured
	}

	key := utils.GenerateStorageKey(filename)

	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
