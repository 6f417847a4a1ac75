package models

import "time"

type ProcessedImage struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ProcessedAt time.Time `json:"processed_at"`
	Size        ImageSize `json:"size"`
	Edge        string    `json:"edge"`
	URL         string    `json:"url"`
	FileSize    int64     `json:"file_size"`
	Cached      bool      `json:"cached,omitempty"`
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
