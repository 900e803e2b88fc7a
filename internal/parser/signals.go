package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	calendarDateToken = `(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?[ /]?\d{2,4}|\d{1,2}/\d{2,4}|\d{4})`
	dateToken         = `(?:` + calendarDateToken + `|present|current|now)`
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)\b(` + dateToken + `)\s*(?:-|–|—|\bto\b|\bthrough\b|\buntil\b)\s*(` + dateToken + `)\b`)
	calendarPattern  = regexp.MustCompile(`(?i)\b` + calendarDateToken + `\b`)

	jobTitleKeywords = regexp.MustCompile(`(?i)\b(?:engineer|developer|manager|lead|intern|analyst|specialist|consultant|architect|designer|programmer|coordinator|officer|administrator|scientist|director|head of|associate|technician|assistant)s?\b`)
	actionVerbLine   = regexp.MustCompile(`(?i)^(?:working|worked|built|managed|developed|led|created|responsible|involved|designed|implemented|collaborated|mentored|maintained|improved|delivered|drove|owned)\b`)
	teamSizePattern  = regexp.MustCompile(`(?i)\b(?:team of|of \d+)\b`)
	sentencePunct    = regexp.MustCompile(`[.,]`)
	titleSeparators  = regexp.MustCompile(`\s*\|\s*|\s+(?:-|–|—|:|@|at)\s+`)
	titleEdgeJunk    = regexp.MustCompile(`^[\s|•\-,:]+|[\s|•\-,:]+$`)

	degreePattern = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:bachelors?|masters?|ph\.?d|doctorate|diploma|degree|associate of|b\.s\.?|m\.s\.?|b\.a\.|m\.a\.|b\.sc|m\.sc|bsc|msc|b\.tech|m\.tech|b\.e\.|m\.b\.a\.?|mba)(?:$|[^a-z])`)
	schoolPattern = regexp.MustCompile(`(?i)\b(?:university|college|school|institute|polytechnic|academy)\b`)
	yearPattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	yearTail      = regexp.MustCompile(`\s*[(\[,\-]?\s*\b(?:19|20)\d{2}\b.*$`)
	gpaPattern    = regexp.MustCompile(`(?i)\bGPA\s*:?\s*(\d(?:\.\d+)?)`)
	schoolNoise   = regexp.MustCompile(`(?i)[()\[\]]|\bgraduated\b`)

	urlPattern       = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+|\b[\w-]+\.(?:com|org|net|io|dev|app)/\S+`)
	techLinePattern  = regexp.MustCompile(`(?i)^(?:tech(?:nologies|nology| stack)?|stack|built with|tools)\s*:\s*(.+)$`)
	bulletPrefix     = regexp.MustCompile(`^[\s•\-+*#>]+\s*`)
	phoneLinePattern = regexp.MustCompile(`\d{3}[-. ]?\d{3}[-. ]?\d{4}`)
)

// dateRange returns the start and end tokens of the first date range on the line.
func dateRange(line string) (start, end string, ok bool) {
	m := dateRangePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// hasDate reports a calendar date, or a range such as "2019 - Present".
// "Current" on its own is a word, not a date.
func hasDate(line string) bool {
	return calendarPattern.MatchString(line) || dateRangePattern.MatchString(line)
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, BulletMarker) || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "+")
}

func isActionLine(line string) bool {
	return actionVerbLine.MatchString(stripBullet(line))
}

// jobTitleSignal fires on short non-bullet lines naming a role, excluding
// narrative lines that start with an action verb or describe a team size.
func jobTitleSignal(line string) bool {
	if isBullet(line) || utf8.RuneCountInString(line) > 80 {
		return false
	}
	return jobTitleKeywords.MatchString(line) &&
		!isActionLine(line) &&
		!teamSizePattern.MatchString(line)
}

// splitTitleLine separates "Title | Company | dates" style lines.
func splitTitleLine(line string) (title, company string) {
	if start := dateRangePattern.FindStringIndex(line); start != nil {
		line = line[:start[0]] + " " + line[start[1]:]
	}
	line = strings.Join(strings.Fields(line), " ")

	var parts []string
	for _, part := range titleSeparators.Split(line, -1) {
		if part = titleEdgeJunk.ReplaceAllString(part, ""); part != "" {
			parts = append(parts, part)
		}
	}
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
}

func isShortPlain(line string, limit int) bool {
	return utf8.RuneCountInString(line) < limit && !isBullet(line) && !sentencePunct.MatchString(line)
}
