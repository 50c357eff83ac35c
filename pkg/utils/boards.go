package utils

import "strings"

// knownBoardDomains maps job-board hostnames to a short board label the
// prompt builder can use for board-specific extraction hints.
var knownBoardDomains = map[string]string{
	"linkedin.com":         "LinkedIn",
	"indeed.com":           "Indeed",
	"glassdoor.com":        "Glassdoor",
	"greenhouse.io":        "Greenhouse",
	"boards.greenhouse.io": "Greenhouse",
	"lever.co":             "Lever",
	"jobs.lever.co":        "Lever",
	"ashbyhq.com":          "Ashby",
	"jobs.ashbyhq.com":     "Ashby",
	"workday.com":          "Workday",
	"myworkdayjobs.com":    "Workday",
	"wellfound.com":        "Wellfound",
	"remoteok.com":         "RemoteOK",
	"weworkremotely.com":   "We Work Remotely",
	"hh.ru":                "HeadHunter",
}

// DetectJobBoard returns the board label for a URL hosted on a known
// job board, or "" for everything else.
func DetectJobBoard(rawURL string) string {
	host := ExtractDomain(rawURL)
	if host == "" {
		return ""
	}

	if board, ok := knownBoardDomains[host]; ok {
		return board
	}

	// Match subdomains like company.greenhouse.io
	for domain, board := range knownBoardDomains {
		if strings.HasSuffix(host, "."+domain) {
			return board
		}
	}

	return ""
}
