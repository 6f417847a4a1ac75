package processor

import (
	"fmt"

	"github.com/phambaophuc/circle-mask/internal/services/codec"
)

// ValidateImage checks the upload size and that the header describes a
// decodable image with at least one pixel.
func (p *ImageProcessor) ValidateImage(data []byte, maxSize int64) error {
	size := int64(len(data))
	if size == 0 {
		return fmt.Errorf("empty image data")
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}

	cfg, _, err := codec.Config(data)
	if err != nil {
		return err
	}
	if cfg.Width < 1 || cfg.Height < 1 {
		return fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}

	return nil
}
