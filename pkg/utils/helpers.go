package utils

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// ValidateSourceURL checks that the source is an absolute http/https
// URL with a host. Anything else fails extraction before any provider
// work happens.
func ValidateSourceURL(source string) error {
	if strings.TrimSpace(source) == "" {
		return NewInvalidSourceError("source URL is empty")
	}

	parsed, err := url.Parse(source)
	if err != nil {
		return NewInvalidSourceError(fmt.Sprintf("unparseable URL: %v", err))
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewInvalidSourceError(fmt.Sprintf("unsupported scheme %q", parsed.Scheme))
	}

	if parsed.Host == "" {
		return NewInvalidSourceError("URL has no host")
	}

	return nil
}

// NormalizeSourceURL produces the canonical cache key for a source URL:
// lowercased scheme/host with any fragment stripped.
func NormalizeSourceURL(source string) string {
	parsed, err := url.Parse(source)
	if err != nil {
		return source
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	return parsed.String()
}

// ExtractDomain returns the hostname of a URL, or "" when unparseable
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// FormatDuration formats a duration to a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}

