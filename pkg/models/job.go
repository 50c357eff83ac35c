package models

import (
	"strings"
	"time"
)

// Job represents a structured job posting extracted from a source URL.
// CompanyName, Title and Description are required; a provider response
// missing any of them is treated as unparseable.
type Job struct {
	Title            string       `json:"title"`
	JobURL           string       `json:"job_url"`
	CompanyName      string       `json:"company_name"`
	Location         string       `json:"location"`
	WorkArrangement  string       `json:"work_arrangement"` // "remote", "hybrid", "on-site" or ""
	Salary           *SalaryRange `json:"salary,omitempty"`
	Skills           []string     `json:"skills"`
	Requirements     []string     `json:"requirements"`
	Description      string       `json:"description"`
	Responsibilities []string     `json:"responsibilities"`
	Benefits         []string     `json:"benefits"`
	PostedDate       string       `json:"posted_date,omitempty"`
	Metadata         JobMetadata  `json:"metadata"`
}

// SalaryRange represents the salary information for a job posting
type SalaryRange struct {
	Currency string `json:"currency"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
}

// JobMetadata carries extraction bookkeeping alongside the job record
type JobMetadata struct {
	SourceURL   string    `json:"source_url"`
	Provider    string    `json:"provider"`
	Engine      string    `json:"engine"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// HasRequiredFields reports whether the record carries the fields every
// successful extraction must produce. Whitespace-only values do not
// count.
func (j *Job) HasRequiredFields() bool {
	return j != nil &&
		strings.TrimSpace(j.CompanyName) != "" &&
		strings.TrimSpace(j.Title) != "" &&
		strings.TrimSpace(j.Description) != ""
}
