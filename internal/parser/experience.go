package parser

import (
	"strings"

	"resumeimport/internal/types"
)

// PlaceholderTitle is held by an experience entry until a real title shows up.
const PlaceholderTitle = "Unspecified Role"

const maxCompanyLen = 60

// experienceAcc is the fold state: finished entries plus at most one open entry.
type experienceAcc struct {
	entries     []types.ExperienceEntry
	open        *types.ExperienceEntry
	description []string
}

// BuildExperience folds an experience bucket into entries, in document order.
func BuildExperience(lines []string) []types.ExperienceEntry {
	acc := experienceAcc{entries: []types.ExperienceEntry{}}
	for _, line := range lines {
		acc.step(line)
	}
	acc.flush()
	return acc.entries
}

func (acc *experienceAcc) step(line string) {
	titleSignal := jobTitleSignal(line)

	if acc.open == nil || (titleSignal && acc.open.JobTitle != PlaceholderTitle) {
		acc.flush()
		acc.open = &types.ExperienceEntry{JobTitle: PlaceholderTitle}
		if titleSignal {
			acc.applyTitleLine(line)
			return
		}
	}
	acc.continueEntry(line, titleSignal)
}

// continueEntry applies the tie-break order: dates, title, company, description.
func (acc *experienceAcc) continueEntry(line string, titleSignal bool) {
	entry := acc.open

	if start, end, ok := dateRange(line); ok && entry.StartDate == "" {
		if titleSignal && entry.JobTitle == PlaceholderTitle {
			acc.applyTitleLine(line)
			return
		}
		entry.StartDate, entry.EndDate = start, end
		// a line like "Acme Corp 2019 - 2021" also names the company
		if rest, _ := splitTitleLine(line); rest != "" && entry.Company == "" && !titleSignal && isShortPlain(rest, maxCompanyLen) && !hasDate(rest) {
			entry.Company = rest
		}
		return
	}

	if titleSignal && entry.JobTitle == PlaceholderTitle {
		acc.applyTitleLine(line)
		return
	}

	if entry.Company == "" && isShortPlain(line, maxCompanyLen) && !hasDate(line) && !isActionLine(line) {
		entry.Company = strings.TrimSpace(line)
		return
	}

	acc.description = append(acc.description, line)
}

// applyTitleLine sets title, and company and dates when they share the line.
func (acc *experienceAcc) applyTitleLine(line string) {
	entry := acc.open
	title, company := splitTitleLine(line)
	if title != "" {
		entry.JobTitle = title
	}
	if company != "" && entry.Company == "" {
		entry.Company = company
	}
	if start, end, ok := dateRange(line); ok && entry.StartDate == "" {
		entry.StartDate, entry.EndDate = start, end
	}
}

func (acc *experienceAcc) flush() {
	if acc.open == nil {
		return
	}
	entry := *acc.open
	entry.Description = strings.Join(acc.description, "\n")

	noise := entry.JobTitle == PlaceholderTitle && entry.Company == "" &&
		entry.StartDate == "" && entry.EndDate == ""
	if !noise {
		acc.entries = append(acc.entries, entry)
	}
	acc.open = nil
	acc.description = nil
}
