package models

import "time"

// ExtractResponse represents the response from an extract request
type ExtractResponse struct {
	Success        bool          `json:"success"`
	Job            *Job          `json:"job,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// ProviderHealth is a point-in-time snapshot of one provider's circuit state
type ProviderHealth struct {
	Provider             string     `json:"provider"`
	State                string     `json:"state"`
	ConsecutiveFailures  int        `json:"consecutive_failures"`
	ConsecutiveSuccesses int        `json:"consecutive_successes"`
	OpenedAt             *time.Time `json:"opened_at,omitempty"`
}

// ProviderHealthResponse lists circuit state for every registered provider
type ProviderHealthResponse struct {
	Providers []ProviderHealth `json:"providers"`
	Timestamp time.Time        `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
