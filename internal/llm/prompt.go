package llm

import (
	"fmt"

	"jobtrail-utils/pkg/models"
	"jobtrail-utils/pkg/utils"
)

// BuildExtractionPrompt creates the structured-extraction prompt shared
// by every provider. The mode hint tunes the guidance but never changes
// the expected output shape.
func BuildExtractionPrompt(content, url, mode string) string {
	boardHint := ""
	if mode == models.ModeBoard {
		if board := utils.DetectJobBoard(url); board != "" {
			boardHint = fmt.Sprintf("\nThis page is hosted on %s. Ignore the board's navigation, recommended-jobs sidebars and promotional sections; extract only the posting itself.\n", board)
		}
	}

	return fmt.Sprintf(`You are a job posting analyzer. Extract structured job information from the provided content and return it as a JSON object.
%s
The content below is from a job posting webpage. Extract the following information and return it as a valid JSON object with exactly these fields:

{
  "title": "string - The job title",
  "job_url": "string - The URL of the job posting (%s)",
  "company_name": "string - The company name",
  "location": "string - The job location (city, state, country, or 'Remote')",
  "work_arrangement": "string - One of 'remote', 'hybrid', 'on-site' or '' if unknown",
  "salary": {
    "currency": "string - ISO currency code or symbol as displayed",
    "min": number - Minimum salary as integer (0 if not specified),
    "max": number - Maximum salary as integer (0 if not specified)
  },
  "skills": ["array of strings - Technologies and skills mentioned"],
  "requirements": ["array of strings - Required qualifications and experience"],
  "description": "string - Brief job description or summary (2-3 sentences max)",
  "responsibilities": ["array of strings - Key job responsibilities and duties"],
  "benefits": ["array of strings - Employee benefits and perks"],
  "posted_date": "string - Posting date as shown, or ''"
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. If information is not found, use empty string "" for strings, empty array [] for arrays, and 0 for numbers
3. For salary: extract any monetary values mentioned (annual, hourly, etc.)
4. Keep the description concise but informative
5. Extract requirements and responsibilities separately
6. Include the provided URL as job_url
7. If the content doesn't appear to be a job posting, return the structure with empty values

JOB POSTING CONTENT:
%s`, boardHint, url, content)
}
