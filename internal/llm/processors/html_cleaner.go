package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	newlineRe    = regexp.MustCompile(`\n{3,}`)

	// Boilerplate that survives tag stripping and only wastes prompt space
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bjavascript\s+is\s+(disabled|required)\b[^.]*\.?`),
		regexp.MustCompile(`(?i)\bplease\s+enable\s+(javascript|cookies)\b[^.]*\.?`),
		regexp.MustCompile(`(?i)\baccept\s+(all\s+)?cookies\b[^.]*\.?`),
	}
)

// ContentCleaner distills raw page HTML into the plain text that gets
// handed to a model provider. Navigation, chrome and scripts are
// stripped; content inside job-posting containers is preferred over the
// rest of the body.
type ContentCleaner struct {
	stripTags    []string
	jobSelectors []string
}

// NewContentCleaner creates a cleaner with the default selector sets
func NewContentCleaner() *ContentCleaner {
	return &ContentCleaner{
		stripTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "path", "g", "defs", "use", "symbol",
			"meta", "link", "base", "video", "audio", "canvas",
		},
		jobSelectors: []string{
			"main", "[role='main']", "#main",
			".job", ".job-posting", ".job-details", ".job-description",
			".posting", ".position", ".vacancy", ".opening",
			"article", "section[class*='job']", "section[class*='posting']",
			"[data-testid*='job']", "[data-test*='job']", "[data-qa*='job']",
			"#jobDescriptionText", ".jobs-description",
		},
	}
}

// ExtractText strips chrome from the document and returns the text most
// likely to describe the posting. Falls back to the whole body when no
// posting container matches.
func (c *ContentCleaner) ExtractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range c.stripTags {
		doc.Find(tag).Remove()
	}

	var parts []string
	seen := make(map[string]bool)
	for _, selector := range c.jobSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			// Tiny fragments are selector noise, not content
			if len(text) < 80 || seen[text] {
				return
			}
			seen[text] = true
			parts = append(parts, text)
		})
	}

	if len(parts) == 0 {
		parts = append(parts, doc.Find("body").Text())
	}

	return c.normalize(strings.Join(parts, "\n\n")), nil
}

// normalize collapses whitespace and removes known boilerplate
func (c *ContentCleaner) normalize(text string) string {
	for _, re := range noisePatterns {
		text = re.ReplaceAllString(text, "")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = newlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// EstimateTokens gives a rough token count for budget checks, assuming
// ~4 characters per token.
func (c *ContentCleaner) EstimateTokens(text string) int {
	return len(text) / 4
}
