package parser

import (
	"strings"

	"resumeimport/internal/types"
)

// segment assigns every line to a section bucket. Heading lines switch the
// current section and are dropped. Before the first heading, contact lines and
// the name line are skipped and everything else lands in Fallback.
// The second result reports whether any heading was recognized.
func segment(lines []string, name string, table *HeadingTable) (types.Buckets, bool) {
	buckets := make(types.Buckets, len(types.AllSections))
	for _, key := range types.AllSections {
		buckets[key] = []string{}
	}

	var current types.SectionKey
	for _, line := range lines {
		if section, ok := table.Match(line); ok {
			current = section
			continue
		}
		if current != "" {
			buckets[current] = append(buckets[current], line)
			continue
		}
		if isContactLine(line) || isNameLine(line, name) {
			continue
		}
		buckets[types.SectionFallback] = append(buckets[types.SectionFallback], line)
	}
	return buckets, current != ""
}

// Segment splits lines into section buckets using the default heading table.
func Segment(lines []string, name string) types.Buckets {
	buckets, _ := segment(lines, name, DefaultHeadingTable())
	return buckets
}

func isNameLine(line, name string) bool {
	if name == "" {
		return false
	}
	cleaned := strings.TrimSpace(leadingPunctuation.ReplaceAllString(line, ""))
	cleaned = strings.TrimSpace(nameBoilerplate.ReplaceAllString(cleaned, ""))
	return strings.EqualFold(cleaned, name) || strings.EqualFold(strings.TrimSpace(line), name)
}
