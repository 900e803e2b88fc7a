// Package quality scores how complete a parsed profile is and, when a job
// description is supplied, how well the resume text overlaps with it.
package quality

import (
	"strings"
	"unicode/utf8"

	"resumeimport/internal/types"
)

const MaxScore = 100

// Suggestions, one per missing or weak category, in scoring order.
const (
	SuggestName       = "Add your full name clearly at the top."
	SuggestContact    = "Ensure both email and phone are present."
	SuggestSummary    = "Craft a strong professional summary (2-3 sentences)."
	SuggestExperience = "List your work history with clear job titles."
	SuggestSkills     = "Expand your technical skills section with relevant tools."
	SuggestEducation  = "Include your academic background."
	SuggestLength     = "Keep the resume between roughly one and three pages of text."
)

const (
	minSummaryLen = 50
	minSkillsLen  = 20
	minTextLen    = 1000
	maxTextLen    = 5000
)

// criterion is one weighted completeness check.
type criterion struct {
	weight     int
	suggestion string
	met        func(p types.ParsedProfile, textLen int) bool
}

var criteria = []criterion{
	{15, SuggestName, func(p types.ParsedProfile, _ int) bool {
		return strings.TrimSpace(p.PersonalInfo.FullName) != ""
	}},
	{10, SuggestContact, func(p types.ParsedProfile, _ int) bool {
		return p.PersonalInfo.Email != "" && p.PersonalInfo.Phone != ""
	}},
	{10, SuggestSummary, func(p types.ParsedProfile, _ int) bool {
		return utf8.RuneCountInString(p.Summary) > minSummaryLen
	}},
	{25, SuggestExperience, func(p types.ParsedProfile, _ int) bool {
		return len(p.Experience) > 0
	}},
	{15, SuggestSkills, func(p types.ParsedProfile, _ int) bool {
		return utf8.RuneCountInString(p.TechnicalSkills) > minSkillsLen
	}},
	{10, SuggestEducation, func(p types.ParsedProfile, _ int) bool {
		return len(p.Education) > 0
	}},
	{10, SuggestLength, func(_ types.ParsedProfile, n int) bool {
		return n > minTextLen && n < maxTextLen
	}},
}

// atsKeywords are terms screening systems commonly look for.
var atsKeywords = []string{
	"leadership", "development", "management", "agile", "cloud", "api",
	"database", "ui/ux", "optimization", "collaboration", "strategy",
}

// Analyze scores profile against the normalized text it was parsed from.
// jobDescription is optional; when empty the matching fields stay unset.
func Analyze(profile types.ParsedProfile, normalizedText, jobDescription string) types.QualityAnalysis {
	analysis := types.QualityAnalysis{
		Suggestions:   []string{},
		ATSKeywords:   []string{},
		MatchKeywords: []string{},
	}

	textLen := utf8.RuneCountInString(normalizedText)
	for _, c := range criteria {
		if c.met(profile, textLen) {
			analysis.Score += c.weight
		} else {
			analysis.Suggestions = append(analysis.Suggestions, c.suggestion)
		}
	}
	analysis.Score = min(analysis.Score, MaxScore)

	lower := strings.ToLower(normalizedText)
	for _, kw := range atsKeywords {
		if containsWord(lower, kw) {
			analysis.ATSKeywords = append(analysis.ATSKeywords, kw)
		}
	}

	if strings.TrimSpace(jobDescription) != "" {
		score, matches := MatchJobDescription(normalizedText, jobDescription)
		analysis.MatchingScore = &score
		analysis.MatchKeywords = matches
	}
	return analysis
}

// containsWord matches kw only where it is not part of a longer word, so
// "api" does not fire on "rapid". Plural "s" and "es" endings still match.
func containsWord(text, kw string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], kw)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(kw)
		if !isWordByte(text, start-1) && wordEndsAt(text, end) {
			return true
		}
		i = start + 1
	}
}

// wordEndsAt reports whether a word may end at i, allowing a plural suffix.
func wordEndsAt(text string, i int) bool {
	if !isWordByte(text, i) {
		return true
	}
	if strings.HasPrefix(text[i:], "es") && !isWordByte(text, i+2) {
		return true
	}
	return text[i] == 's' && !isWordByte(text, i+1)
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
