package llm

import (
	"strings"
	"testing"

	"jobtrail-utils/pkg/utils"
)

const validResponse = `{
	"title": "Senior Go Engineer",
	"company_name": "Acme",
	"location": "Berlin",
	"description": "Own backend services end to end.",
	"skills": ["go", "postgres"]
}`

func TestParseJobValidResponse(t *testing.T) {
	job, err := ParseJob(validResponse, "https://example.com/jobs/1")
	if err != nil {
		t.Fatalf("ParseJob returned error: %v", err)
	}
	if job.Title != "Senior Go Engineer" || job.CompanyName != "Acme" {
		t.Errorf("unexpected job fields: %+v", job)
	}
	if job.JobURL != "https://example.com/jobs/1" {
		t.Errorf("empty job_url should default to source URL, got %q", job.JobURL)
	}
}

func TestParseJobStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	job, err := ParseJob(fenced, "https://example.com/jobs/1")
	if err != nil {
		t.Fatalf("ParseJob returned error: %v", err)
	}
	if job.Title != "Senior Go Engineer" {
		t.Errorf("unexpected title %q", job.Title)
	}
}

func TestParseJobMalformedResponse(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "{\"title\": "} {
		_, err := ParseJob(raw, "https://example.com/jobs/1")
		ee, ok := utils.AsExtractionError(err)
		if !ok || ee.Kind != utils.KindMalformedResponse {
			t.Errorf("raw %q: expected malformed-response error, got %v", raw, err)
		}
	}
}

func TestParseJobMissingRequiredFields(t *testing.T) {
	_, err := ParseJob(`{"title": "Engineer"}`, "https://example.com/jobs/1")
	ee, ok := utils.AsExtractionError(err)
	if !ok || ee.Kind != utils.KindMissingFields {
		t.Fatalf("expected missing-fields error, got %v", err)
	}
	for _, field := range []string{"company_name", "description"} {
		if !strings.Contains(ee.Detail, field) {
			t.Errorf("detail should name %s, got %q", field, ee.Detail)
		}
	}
}

func TestParseJobDropsZeroSalary(t *testing.T) {
	raw := `{
		"title": "Engineer",
		"company_name": "Acme",
		"description": "d",
		"salary": {"currency": "", "min": 0, "max": 0}
	}`
	job, err := ParseJob(raw, "https://example.com/jobs/1")
	if err != nil {
		t.Fatalf("ParseJob returned error: %v", err)
	}
	if job.Salary != nil {
		t.Errorf("zero salary block should be dropped, got %+v", job.Salary)
	}
}

func TestBuildExtractionPromptBoardMode(t *testing.T) {
	prompt := BuildExtractionPrompt("content", "https://www.linkedin.com/jobs/view/1", "board")
	if !strings.Contains(prompt, "LinkedIn") {
		t.Error("board mode on a known board should name it in the prompt")
	}

	generic := BuildExtractionPrompt("content", "https://www.linkedin.com/jobs/view/1", "generic")
	if strings.Contains(generic, "LinkedIn") {
		t.Error("generic mode should not add a board hint")
	}
}
