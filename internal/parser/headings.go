package parser

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	appErrors "resumeimport/internal/errors"
	"resumeimport/internal/types"
)

const (
	minHeadingLen = 3
	maxHeadingLen = 35
)

var (
	headingJoiners  = regexp.MustCompile(`[&/+]`)
	headingNonAlpha = regexp.MustCompile(`[^a-zA-Z ]+`)
	headingSpaces   = regexp.MustCompile(` {2,}`)
)

var defaultHeadingAliases = map[types.SectionKey][]string{
	types.SectionExperience: {
		"experience", "employment", "work history", "professional background",
		"career history", "employment history", "work experience", "professional experience",
	},
	types.SectionEducation: {
		"education", "academic", "qualifications", "academic background", "studies",
	},
	types.SectionSkills: {
		"skills", "technologies", "technical stack", "competencies", "expertise",
		"tools", "tech stack", "technical skills", "core competencies",
	},
	types.SectionProjects: {
		"projects", "portfolio", "personal projects", "key projects",
	},
	types.SectionSummary: {
		"summary", "profile", "objective", "about me", "professional summary",
		"professional profile", "career objective",
	},
	types.SectionCertifications: {
		"certifications", "credentials", "licenses", "courses", "certificates",
	},
	types.SectionAchievements: {
		"achievements", "awards", "honors", "extracurricular", "academic achievements",
	},
	types.SectionLanguages: {"languages"},
	types.SectionHobbies:   {"hobbies", "interests"},
	types.SectionReferences: {
		"references", "referees",
	},
}

type headingRule struct {
	alias   string
	section types.SectionKey
}

// HeadingTable maps heading aliases to sections. Rules are kept longest
// alias first so "academic achievements" wins over "academic".
type HeadingTable struct {
	rules []headingRule
}

// DefaultHeadingTable returns the built-in English heading vocabulary.
func DefaultHeadingTable() *HeadingTable {
	return newHeadingTable(defaultHeadingAliases)
}

func newHeadingTable(aliases map[types.SectionKey][]string) *HeadingTable {
	seen := make(map[string]bool)
	var rules []headingRule
	for _, section := range types.AllSections {
		for _, alias := range aliases[section] {
			key := headingKey(alias)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			rules = append(rules, headingRule{alias: key, section: section})
		}
	}

	slices.SortStableFunc(rules, func(a, b headingRule) int {
		if d := len(b.alias) - len(a.alias); d != 0 {
			return d
		}
		return strings.Compare(a.alias, b.alias)
	})
	return &HeadingTable{rules: rules}
}

// WithAliases returns a copy of t extended with extra aliases. Extra aliases
// that collide with an existing one are reassigned to the new section.
func (t *HeadingTable) WithAliases(extra map[types.SectionKey][]string) *HeadingTable {
	merged := make(map[types.SectionKey][]string)
	for _, rule := range t.rules {
		merged[rule.section] = append(merged[rule.section], rule.alias)
	}

	overridden := make(map[string]bool)
	for _, aliases := range extra {
		for _, alias := range aliases {
			overridden[headingKey(alias)] = true
		}
	}
	for section, aliases := range merged {
		merged[section] = slices.DeleteFunc(aliases, func(a string) bool { return overridden[a] })
	}
	for section, aliases := range extra {
		merged[section] = append(merged[section], aliases...)
	}
	return newHeadingTable(merged)
}

// Match reports which section a line opens, if it is a heading at all.
// A heading is the whole line, optionally joined to a second topic with
// "&", "/" or "and" ("Skills & Tools").
func (t *HeadingTable) Match(line string) (types.SectionKey, bool) {
	key := headingKey(line)
	if len(key) < minHeadingLen || len(key) > maxHeadingLen {
		return "", false
	}
	for _, rule := range t.rules {
		if key == rule.alias || strings.HasPrefix(key, rule.alias+" and ") {
			return rule.section, true
		}
	}
	return "", false
}

// Len returns the number of aliases in the table.
func (t *HeadingTable) Len() int {
	return len(t.rules)
}

// Aliases returns the aliases for one section, longest first.
func (t *HeadingTable) Aliases(section types.SectionKey) []string {
	var out []string
	for _, rule := range t.rules {
		if rule.section == section {
			out = append(out, rule.alias)
		}
	}
	return out
}

func headingKey(line string) string {
	key := headingJoiners.ReplaceAllString(line, " and ")
	key = headingNonAlpha.ReplaceAllString(key, "")
	key = headingSpaces.ReplaceAllString(key, " ")
	return strings.ToLower(strings.TrimSpace(key))
}

// ParseHeadingAliases decodes a YAML document of section name to alias list.
func ParseHeadingAliases(data []byte) (map[types.SectionKey][]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeHeadingsFile, "headings file is not valid YAML", err)
	}

	out := make(map[types.SectionKey][]string, len(raw))
	for name, aliases := range raw {
		section := types.SectionKey(strings.ToLower(strings.TrimSpace(name)))
		if section == types.SectionFallback || !slices.Contains(types.AllSections, section) {
			return nil, appErrors.NewConfigError(appErrors.ErrCodeHeadingsFile,
				fmt.Sprintf("unknown section %q in headings file", name), nil)
		}
		for _, alias := range aliases {
			if k := headingKey(alias); len(k) < minHeadingLen || len(k) > maxHeadingLen {
				return nil, appErrors.NewConfigError(appErrors.ErrCodeHeadingsFile,
					fmt.Sprintf("alias %q for %s must be %d-%d letters", alias, section, minHeadingLen, maxHeadingLen), nil)
			}
		}
		out[section] = append(out[section], aliases...)
	}
	return out, nil
}

// LoadHeadingTable builds the default table extended with the aliases in path.
// An empty path yields the default table.
func LoadHeadingTable(path string) (*HeadingTable, error) {
	if path == "" {
		return DefaultHeadingTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "cannot read headings file", err).
			WithContext("path", path)
	}
	extra, err := ParseHeadingAliases(data)
	if err != nil {
		if appErr, ok := appErrors.As(err); ok {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return DefaultHeadingTable().WithAliases(extra), nil
}
