package llm

import (
	"encoding/json"
	"strings"

	"jobtrail-utils/pkg/models"
	"jobtrail-utils/pkg/utils"
)

// ParseJob decodes a provider's raw output into a Job and enforces the
// required-field contract. A response that is not the expected JSON
// shape is a permanent malformed-response error; one that decodes but
// lacks company, title or description is a permanent
// missing-required-fields error. Neither is retried.
func ParseJob(raw, sourceURL string) (*models.Job, error) {
	text := stripCodeFences(raw)
	if text == "" {
		return nil, utils.NewMalformedResponseError("provider returned no text content")
	}

	var job models.Job
	if err := json.Unmarshal([]byte(text), &job); err != nil {
		return nil, utils.NewMalformedResponseError(err.Error())
	}

	if !job.HasRequiredFields() {
		return nil, utils.NewMissingFieldsError(strings.Join(missingRequiredFields(&job), ", "))
	}

	if job.JobURL == "" {
		job.JobURL = sourceURL
	}

	// A zero salary block means the posting had no salary information
	if job.Salary != nil && job.Salary.Min == 0 && job.Salary.Max == 0 && job.Salary.Currency == "" {
		job.Salary = nil
	}

	return &job, nil
}

func missingRequiredFields(job *models.Job) []string {
	var missing []string
	if strings.TrimSpace(job.CompanyName) == "" {
		missing = append(missing, "company_name")
	}
	if strings.TrimSpace(job.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(job.Description) == "" {
		missing = append(missing, "description")
	}
	return missing
}

// stripCodeFences removes markdown code fences some models wrap around
// JSON output.
func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
