package models

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck reports each dependency as "healthy", "not configured" or
// "unhealthy: <reason>".
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

type Stats struct {
	Cache     map[string]interface{} `json:"cache,omitempty"`
	Queue     map[string]interface{} `json:"queue,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
