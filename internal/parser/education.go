package parser

import (
	"strings"

	"resumeimport/internal/types"
)

// placeholderSchool marks an open entry whose institution is still unknown.
// It never reaches the output.
const placeholderSchool = "Educational Institution"

const maxBareSchoolLen = 60

type educationAcc struct {
	entries []types.EducationEntry
	open    *types.EducationEntry
}

// BuildEducation folds an education bucket into entries, in document order.
func BuildEducation(lines []string) []types.EducationEntry {
	acc := educationAcc{entries: []types.EducationEntry{}}
	for _, line := range lines {
		acc.step(line)
	}
	acc.flush()
	return acc.entries
}

func (acc *educationAcc) step(line string) {
	degree := degreePattern.MatchString(line)
	school := schoolPattern.MatchString(line)

	text := stripBullet(line)

	startNew := acc.open == nil ||
		(degree && acc.open.Degree != "" && !strings.EqualFold(cutAtYear(text), acc.open.Degree)) ||
		(school && acc.open.School != placeholderSchool)
	if startNew {
		acc.flush()
		acc.open = &types.EducationEntry{School: placeholderSchool}
	}
	entry := acc.open

	if degree && entry.Degree == "" {
		entry.Degree = cutAtYear(text)
	}
	if school && entry.School == placeholderSchool {
		if s := strings.TrimSpace(schoolNoise.ReplaceAllString(cutAtYear(text), "")); s != "" {
			entry.School = s
		}
	}
	if year := yearPattern.FindString(line); year != "" && entry.GradYear == "" {
		entry.GradYear = year
	}
	if m := gpaPattern.FindStringSubmatch(line); m != nil && entry.GPA == "" {
		entry.GPA = m[1]
	}

	// "Stanford" on its own under a degree line is still the school
	if !degree && !school && entry.Degree != "" && entry.School == placeholderSchool &&
		isShortPlain(text, maxBareSchoolLen) && !anyDigit.MatchString(text) && gpaPattern.FindString(text) == "" {
		entry.School = text
	}
}

func (acc *educationAcc) flush() {
	if acc.open == nil {
		return
	}
	entry := *acc.open
	if entry.School == placeholderSchool {
		entry.School = ""
	}
	if entry != (types.EducationEntry{}) {
		acc.entries = append(acc.entries, entry)
	}
	acc.open = nil
}

// cutAtYear drops everything from the first year onwards.
func cutAtYear(s string) string {
	return strings.TrimSpace(yearTail.ReplaceAllString(s, ""))
}
