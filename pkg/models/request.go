package models

import "time"

// ExtractRequest represents the request payload for extracting a job posting
type ExtractRequest struct {
	URL     string          `json:"url" validate:"required,url"`
	Options *ExtractOptions `json:"options,omitempty"`
}

// ExtractOptions provides additional configuration for extraction requests
type ExtractOptions struct {
	Mode     string        `json:"mode,omitempty" validate:"omitempty,oneof=generic board"` // prompt strategy hint
	Provider string        `json:"provider,omitempty"`                                      // override the configured primary provider
	Engine   string        `json:"engine,omitempty" validate:"omitempty,oneof=headed firecrawl auto"`
	Timeout  time.Duration `json:"timeout,omitempty"` // overall request timeout
}

// Mode values understood by the prompt builder
const (
	ModeGeneric = "generic"
	ModeBoard   = "board"
)
