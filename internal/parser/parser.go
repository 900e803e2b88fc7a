// Package parser turns decoded resume text into a structured profile using
// line-oriented heuristics only. Parsing never fails: unrecognizable input
// yields a sparsely filled profile rather than an error.
package parser

import (
	"regexp"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"resumeimport/internal/types"
)

const (
	DefaultSummaryLimit  = 1000
	DefaultMaxInputChars = 50000

	// pre-heading lines shorter than this are treated as labels, not prose
	minIntroLineLen = 15
)

var (
	softSkillsPrefix = regexp.MustCompile(`(?i)^(?:soft|interpersonal)\s+skills?\s*:\s*`)
	techSkillsPrefix = regexp.MustCompile(`(?i)^(?:technical|hard|core)\s+skills?\s*:\s*`)
	listSeparators   = regexp.MustCompile(`\s*[,;]\s*`)
)

// Options tune a Parser. Zero values fall back to the defaults.
type Options struct {
	SummaryLimit  int
	MaxInputChars int
	Headings      *HeadingTable
}

// Parser is safe for concurrent use. Its heading table can be swapped at
// runtime; every Parse call sees one consistent table.
type Parser struct {
	headings      atomic.Pointer[HeadingTable]
	summaryLimit  int
	maxInputChars int
}

func New(opts Options) *Parser {
	p := &Parser{
		summaryLimit:  opts.SummaryLimit,
		maxInputChars: opts.MaxInputChars,
	}
	if p.summaryLimit <= 0 {
		p.summaryLimit = DefaultSummaryLimit
	}
	if p.maxInputChars <= 0 {
		p.maxInputChars = DefaultMaxInputChars
	}
	table := opts.Headings
	if table == nil {
		table = DefaultHeadingTable()
	}
	p.headings.Store(table)
	return p
}

// SetHeadings replaces the heading table used by subsequent calls.
func (p *Parser) SetHeadings(table *HeadingTable) {
	if table != nil {
		p.headings.Store(table)
	}
}

func (p *Parser) Headings() *HeadingTable {
	return p.headings.Load()
}

// Parse extracts a profile from raw document text.
func (p *Parser) Parse(text string) types.ParsedProfile {
	normalized := Normalize(truncateRunes(text, p.maxInputChars))
	lines := Lines(normalized)
	table := p.Headings()

	profile := types.NewParsedProfile()
	profile.PersonalInfo = ExtractContact(normalized)
	profile.PersonalInfo.FullName = detectName(lines, table)

	buckets, headed := segment(lines, profile.PersonalInfo.FullName, table)

	var leftover []string
	profile.Summary, leftover = p.summary(buckets, headed, lines)
	profile.Experience = BuildExperience(buckets[types.SectionExperience])
	profile.Education = BuildEducation(buckets[types.SectionEducation])
	profile.Projects = BuildProjects(buckets[types.SectionProjects])
	profile.References = BuildReferences(buckets[types.SectionReferences])
	profile.TechnicalSkills, profile.SoftSkills = splitSkills(buckets[types.SectionSkills])
	profile.Certifications = listItems(buckets[types.SectionCertifications], 2, false)
	profile.Languages = listItems(buckets[types.SectionLanguages], 1, true)
	profile.Achievements = strings.Join(buckets[types.SectionAchievements], "\n")
	profile.Hobbies = strings.Join(listItems(buckets[types.SectionHobbies], 0, false), ", ")
	profile.AdditionalInfo = strings.Join(leftover, "\n")
	return profile
}

// Segment exposes the section split of text for inspection.
func (p *Parser) Segment(text string) types.SegmentResult {
	normalized := Normalize(truncateRunes(text, p.maxInputChars))
	lines := Lines(normalized)
	table := p.Headings()

	name := detectName(lines, table)
	buckets, _ := segment(lines, name, table)
	return types.SegmentResult{FullName: name, Buckets: buckets}
}

// summary prefers the Summary section. Without one it uses the prose found
// before the first heading, and when the document has no headings at all it
// falls back to a prefix of the whole text. The fallback lines not taken
// into the summary are returned for AdditionalInfo.
func (p *Parser) summary(buckets types.Buckets, headed bool, lines []string) (string, []string) {
	fallback := buckets[types.SectionFallback]
	if s := buckets[types.SectionSummary]; len(s) > 0 {
		return truncateRunes(strings.Join(s, " "), p.summaryLimit), fallback
	}
	if !headed {
		return truncateRunes(strings.Join(lines, " "), p.summaryLimit), fallback
	}

	var intro, rest []string
	for _, line := range fallback {
		if utf8.RuneCountInString(line) > minIntroLineLen {
			intro = append(intro, line)
		} else {
			rest = append(rest, line)
		}
	}
	return truncateRunes(strings.Join(intro, " "), p.summaryLimit), rest
}

func splitSkills(lines []string) (technical, soft string) {
	var tech, softs []string
	for _, line := range lines {
		text := stripBullet(line)
		switch {
		case text == "":
		case softSkillsPrefix.MatchString(text):
			softs = append(softs, softSkillsPrefix.ReplaceAllString(text, ""))
		default:
			tech = append(tech, techSkillsPrefix.ReplaceAllString(text, ""))
		}
	}
	return strings.Join(tech, ", "), strings.Join(softs, ", ")
}

// listItems strips bullets and keeps items longer than minLen runes.
// With split set, comma separated lines yield one item per element.
func listItems(lines []string, minLen int, split bool) []string {
	items := []string{}
	for _, line := range lines {
		parts := []string{stripBullet(line)}
		if split {
			parts = listSeparators.Split(parts[0], -1)
		}
		for _, part := range parts {
			if part = strings.TrimSpace(part); utf8.RuneCountInString(part) > minLen {
				items = append(items, part)
			}
		}
	}
	return items
}

var defaultParser = New(Options{})

// Parse runs the package default parser.
func Parse(text string) types.ParsedProfile {
	return defaultParser.Parse(text)
}
