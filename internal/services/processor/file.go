package processor

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ProcessFile reads src, crops it to a transparent circle and writes a PNG
// to dst. The output is written to a temporary sibling and renamed into
// place, so a failed run never leaves a partial file at dst. Every failure
// is a *ProcessingError naming src.
func (p *ImageProcessor) ProcessFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return &ProcessingError{Path: src, Stage: StageRead, Err: err}
	}

	result, perr := p.process(data)
	if perr != nil {
		perr.Path = src
		return perr
	}

	if err := writeFileAtomic(dst, result.Data); err != nil {
		return &ProcessingError{Path: src, Stage: StageWrite, Err: err}
	}

	p.logger.Debug("Circle written",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height))

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
