package quality

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minMatchTokenLen = 4
	minMatchDivisor  = 5
	maxMatchKeywords = 10
)

var nonWord = regexp.MustCompile(`\W+`)

// MatchJobDescription measures keyword overlap between a resume and a job
// description. Tokens longer than four characters are deduplicated in
// first-seen order and looked up as case-insensitive substrings.
func MatchJobDescription(resumeText, jobDescription string) (int, []string) {
	resume := strings.ToLower(resumeText)

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range nonWord.Split(strings.ToLower(jobDescription), -1) {
		if utf8.RuneCountInString(tok) <= minMatchTokenLen || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	matches := []string{}
	for _, tok := range tokens {
		if strings.Contains(resume, tok) {
			matches = append(matches, tok)
		}
	}

	divisor := math.Max(float64(len(tokens))/2, minMatchDivisor)
	score := int(math.Round(float64(len(matches)) / divisor * 100))
	score = min(score, MaxScore)

	if len(matches) > maxMatchKeywords {
		matches = matches[:maxMatchKeywords]
	}
	return score, matches
}
