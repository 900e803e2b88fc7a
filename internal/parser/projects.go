package parser

import (
	"strings"

	"resumeimport/internal/types"
)

const maxProjectNameLen = 65

type projectAcc struct {
	entries     []types.ProjectEntry
	open        *types.ProjectEntry
	description []string
}

// BuildProjects folds a projects bucket into entries. Short plain lines name a
// project; everything else describes the open one.
func BuildProjects(lines []string) []types.ProjectEntry {
	acc := projectAcc{entries: []types.ProjectEntry{}}
	for _, line := range lines {
		acc.step(line)
	}
	acc.flush()
	return acc.entries
}

func (acc *projectAcc) step(line string) {
	text := stripBullet(line)

	if m := techLinePattern.FindStringSubmatch(text); m != nil {
		acc.ensureOpen()
		if acc.open.Tech == "" {
			acc.open.Tech = strings.TrimSpace(m[1])
			return
		}
	}

	// a bare link, or a labelled one such as "GitHub: https://..."
	if url := urlPattern.FindString(text); url != "" && len(strings.TrimSpace(strings.Replace(text, url, "", 1))) <= 12 {
		acc.ensureOpen()
		if acc.open.Link == "" {
			acc.open.Link = strings.TrimRight(url, ".,;)")
			return
		}
	}

	if start, end, ok := dateRange(text); ok && acc.open != nil && acc.open.Duration == "" {
		if rest, _ := splitTitleLine(text); rest == "" {
			acc.open.Duration = start + " - " + end
			return
		}
	}

	if isShortPlain(line, maxProjectNameLen) {
		acc.flush()
		name, _ := splitTitleLine(line)
		if name == "" {
			name = text
		}
		acc.open = &types.ProjectEntry{Name: name}
		if start, end, ok := dateRange(line); ok {
			acc.open.Duration = start + " - " + end
		}
		return
	}

	acc.ensureOpen()
	if acc.open.Achievement == "" && achievementLine(text) {
		acc.open.Achievement = text
	}
	acc.description = append(acc.description, line)
}

func (acc *projectAcc) ensureOpen() {
	if acc.open == nil {
		acc.open = &types.ProjectEntry{}
	}
}

func (acc *projectAcc) flush() {
	if acc.open == nil {
		return
	}
	entry := *acc.open
	entry.Description = strings.Join(acc.description, "\n")
	if entry != (types.ProjectEntry{}) {
		acc.entries = append(acc.entries, entry)
	}
	acc.open = nil
	acc.description = nil
}

// achievementLine spots a quantified outcome such as "reduced latency by 40%".
func achievementLine(text string) bool {
	return strings.Contains(text, "%") ||
		strings.Contains(strings.ToLower(text), "award") ||
		strings.Contains(strings.ToLower(text), "users")
}
