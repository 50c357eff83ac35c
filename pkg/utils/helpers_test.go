package utils

import (
	"testing"
	"time"
)

func TestValidateSourceURL(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"https URL", "https://example.com/jobs/1", false},
		{"http URL", "http://example.com/jobs/1", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"ftp scheme", "ftp://example.com/jobs/1", true},
		{"file scheme", "file:///etc/passwd", true},
		{"no host", "https://", true},
		{"relative path", "/jobs/1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceURL(tt.source)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSourceURL(%q) error = %v, wantErr %v", tt.source, err, tt.wantErr)
			}
			if err != nil {
				ee, ok := AsExtractionError(err)
				if !ok || ee.Kind != KindInvalidSource {
					t.Errorf("expected invalid-source kind, got %v", err)
				}
			}
		})
	}
}

func TestNormalizeSourceURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://Example.COM/Jobs/1", "https://example.com/Jobs/1"},
		{"https://example.com/jobs/1#apply", "https://example.com/jobs/1"},
		{"https://example.com/jobs/1?ref=feed", "https://example.com/jobs/1?ref=feed"},
	}

	for _, tt := range tests {
		if got := NormalizeSourceURL(tt.in); got != tt.want {
			t.Errorf("NormalizeSourceURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSourceURLIsStable(t *testing.T) {
	once := NormalizeSourceURL("HTTPS://Example.com/a#b")
	twice := NormalizeSourceURL(once)
	if once != twice {
		t.Errorf("normalization is not idempotent: %q vs %q", once, twice)
	}
}

func TestDetectJobBoard(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/123", "LinkedIn"},
		{"https://boards.greenhouse.io/acme/jobs/1", "Greenhouse"},
		{"https://acme.greenhouse.io/jobs/1", "Greenhouse"},
		{"https://jobs.lever.co/acme/1", "Lever"},
		{"https://acme.wd5.myworkdayjobs.com/careers/job/1", "Workday"},
		{"https://careers.acme.com/jobs/1", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		if got := DetectJobBoard(tt.url); got != tt.want {
			t.Errorf("DetectJobBoard(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1.5m"},
		{90 * time.Minute, "1.5h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestExtractDomain(t *testing.T) {
	if got := ExtractDomain("https://Example.COM:8080/path"); got != "example.com" {
		t.Errorf("ExtractDomain = %q, want example.com", got)
	}
	if got := ExtractDomain("://bad"); got != "" {
		t.Errorf("ExtractDomain on invalid URL = %q, want empty", got)
	}
}
