package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BulletMarker is the canonical bullet every glyph variant is rewritten to.
const BulletMarker = "-"

var (
	bulletGlyphs = regexp.MustCompile(`[•►▪■●·–—*]`)
	spaceRuns    = regexp.MustCompile(`[ \t\f\v]+`)
	// control characters other than the whitespace ones
	controlChars = regexp.MustCompile(`[\x00-\x08\x0e-\x1f\x7f-\x{9f}]`)
)

// Normalize canonicalizes raw document text: one bullet marker, plain spaces,
// LF line endings, no blank lines and no runs of spaces. It is idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}

	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = controlChars.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = bulletGlyphs.ReplaceAllString(s, BulletMarker)

	var b strings.Builder
	b.Grow(len(s))
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

// Lines splits normalized text into trimmed, non-empty lines.
func Lines(normalized string) []string {
	if normalized == "" {
		return []string{}
	}
	out := make([]string, 0, strings.Count(normalized, "\n")+1)
	for line := range strings.SplitSeq(normalized, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return s
}
