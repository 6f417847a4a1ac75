package models

import "time"

// CircleRequest is the body of an asynchronous job submission. Exactly one
// of ImageURL and StoragePath names the source image.
type CircleRequest struct {
	ImageURL    string `json:"image_url,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
	Edge        string `json:"edge,omitempty" binding:"omitempty,oneof=hard smooth"`
}

type ProcessingJob struct {
	ID        string          `json:"id"`
	Request   CircleRequest   `json:"request"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Result    *ProcessedImage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Source returns whichever of the request's locations is set.
func (r CircleRequest) Source() string {
	if r.ImageURL != "" {
		return r.ImageURL
	}
	return r.StoragePath
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
