package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies the failure category of an extraction error.
// The retry executor classifies kinds into retryable and permanent.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidSource      ErrorKind = "invalid_source"
	KindContentTooLarge    ErrorKind = "content_too_large"
	KindTimeout            ErrorKind = "timeout"
	KindRateLimited        ErrorKind = "rate_limited"
	KindUnavailable        ErrorKind = "unavailable"
	KindUpstreamServer     ErrorKind = "upstream_server_error"
	KindUpstreamClient     ErrorKind = "upstream_client_error"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindMissingFields      ErrorKind = "missing_required_fields"
	KindAllProvidersFailed ErrorKind = "all_providers_failed"
)

// ProviderAttempt records the terminal error of one provider in the
// fallback chain, kept for diagnostics on AllProvidersFailed.
type ProviderAttempt struct {
	Provider string    `json:"provider"`
	Kind     ErrorKind `json:"kind"`
	Message  string    `json:"message"`
}

// ExtractionError is the application error type for the extraction
// pipeline. Kind drives classification; Status carries the upstream
// HTTP status when one exists.
type ExtractionError struct {
	Kind     ErrorKind         `json:"kind"`
	Status   int               `json:"status,omitempty"`
	Message  string            `json:"message"`
	Detail   string            `json:"detail,omitempty"`
	Attempts []ProviderAttempt `json:"attempts,omitempty"`
}

func (e *ExtractionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// AsExtractionError unwraps err into an *ExtractionError if possible
func AsExtractionError(err error) (*ExtractionError, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// Error constructors

func NewInvalidInputError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindInvalidInput, Message: "invalid input", Detail: detail}
}

func NewInvalidSourceError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindInvalidSource, Message: "invalid source URL", Detail: detail}
}

func NewContentTooLargeError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindContentTooLarge, Message: "content too large", Detail: detail}
}

func NewTimeoutError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindTimeout, Message: "request timed out", Detail: detail}
}

func NewRateLimitedError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: "provider rate limited", Detail: detail}
}

func NewUnavailableError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindUnavailable, Message: "provider unavailable", Detail: detail}
}

func NewInvalidCredentialsError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid provider credentials", Detail: detail}
}

func NewMalformedResponseError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindMalformedResponse, Message: "malformed provider response", Detail: detail}
}

func NewMissingFieldsError(detail string) *ExtractionError {
	return &ExtractionError{Kind: KindMissingFields, Message: "response missing required fields", Detail: detail}
}

// NewUpstreamStatusError maps an upstream HTTP status into the taxonomy.
// 5xx is a server error, 429 is rate limiting, 401/403 are credential
// failures and everything else lands on a client error with the status
// preserved for classification (408 and 429 stay retryable).
func NewUpstreamStatusError(status int, detail string) *ExtractionError {
	switch {
	case status >= 500:
		return &ExtractionError{Kind: KindUpstreamServer, Status: status, Message: fmt.Sprintf("upstream server error (%d)", status), Detail: detail}
	case status == http.StatusTooManyRequests:
		return &ExtractionError{Kind: KindRateLimited, Status: status, Message: "provider rate limited", Detail: detail}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &ExtractionError{Kind: KindInvalidCredentials, Status: status, Message: "invalid provider credentials", Detail: detail}
	default:
		return &ExtractionError{Kind: KindUpstreamClient, Status: status, Message: fmt.Sprintf("upstream client error (%d)", status), Detail: detail}
	}
}

// NewAllProvidersFailedError aggregates the terminal error from every
// provider in the fallback chain.
func NewAllProvidersFailedError(attempts []ProviderAttempt) *ExtractionError {
	return &ExtractionError{
		Kind:     KindAllProvidersFailed,
		Message:  fmt.Sprintf("all %d providers failed", len(attempts)),
		Attempts: attempts,
	}
}

// HTTPStatus maps an extraction error kind to the status the API
// surface responds with.
func (e *ExtractionError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput, KindInvalidSource:
		return http.StatusBadRequest
	case KindContentTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindMalformedResponse, KindMissingFields:
		return http.StatusUnprocessableEntity
	case KindInvalidCredentials:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
