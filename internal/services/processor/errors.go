package processor

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCircle = errors.New("circle bounding box is empty")
	ErrInvalidEdge = errors.New("invalid edge mode")
)

// Stage names the step of the transform that failed.
type Stage string

const (
	StageRead   Stage = "read"
	StageDecode Stage = "decode"
	StageMask   Stage = "mask"
	StageEncode Stage = "encode"
	StageWrite  Stage = "write"
)

// ProcessingError covers every failure of a single transform: unreadable
// or undecodable input, an unusable geometry, and output that could not be
// encoded or written.
type ProcessingError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *ProcessingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("processing image: %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("processing %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
