package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// nameWindow is how many leading lines are considered for the candidate name.
const nameWindow = 10

var (
	fourDigitRun       = regexp.MustCompile(`\d{4}`)
	anyDigit           = regexp.MustCompile(`\d`)
	nameBoilerplate    = regexp.MustCompile(`(?i)^(?:whoami:?|name:?|resume:?|curriculum vitae:?|cv:|#|\$|>)\s*`)
	leadingNonWord     = regexp.MustCompile(`^[^\p{L}\p{N}]+`)
	locationShape      = regexp.MustCompile(`^[A-Z][a-z]+,\s*[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?$`)
	leadingPunctuation = regexp.MustCompile(`^[\p{P}\p{S}\s]+`)
)

// DetectName picks the most name-like line from the top of the document.
// It always returns something for non-empty input.
func DetectName(lines []string) string {
	return detectName(lines, nil)
}

// detectName additionally skips lines the heading table recognizes.
func detectName(lines []string, table *HeadingTable) string {
	if len(lines) == 0 {
		return ""
	}

	window := lines
	if len(window) > nameWindow {
		window = window[:nameWindow]
	}

	for _, line := range window {
		if table != nil {
			if _, ok := table.Match(line); ok {
				continue
			}
		}
		if candidate, ok := nameCandidate(line); ok {
			return candidate
		}
	}

	return strings.TrimSpace(leadingPunctuation.ReplaceAllString(lines[0], ""))
}

func nameCandidate(line string) (string, bool) {
	if strings.Contains(line, "@") || strings.Contains(line, "|") ||
		fourDigitRun.MatchString(line) || utf8.RuneCountInString(line) < 3 {
		return "", false
	}

	candidate := nameBoilerplate.ReplaceAllString(line, "")
	candidate = strings.TrimSpace(leadingNonWord.ReplaceAllString(candidate, ""))

	if locationShape.MatchString(candidate) || anyDigit.MatchString(candidate) {
		return "", false
	}
	if n := utf8.RuneCountInString(candidate); n <= 2 || n >= 50 {
		return "", false
	}
	return candidate, true
}
