package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resumeimport/internal/types"
)

const maxReferenceNameLen = 40

var onRequestPattern = regexp.MustCompile(`(?i)available\s+(?:up)?on\s+request|upon\s+request`)

type referenceAcc struct {
	entries []types.ReferenceEntry
	open    *types.ReferenceEntry
}

// BuildReferences folds a references bucket into entries.
func BuildReferences(lines []string) []types.ReferenceEntry {
	acc := referenceAcc{entries: []types.ReferenceEntry{}}
	for _, line := range lines {
		acc.step(line)
	}
	acc.flush()
	return acc.entries
}

func (acc *referenceAcc) step(line string) {
	text := stripBullet(line)
	if text == "" || onRequestPattern.MatchString(text) {
		return
	}

	hasEmail := strings.Contains(text, "@")
	hasPhone := phoneLinePattern.MatchString(text)

	if !hasEmail && !hasPhone && utf8.RuneCountInString(text) < maxReferenceNameLen && acc.wantsNewEntry() {
		acc.flush()
		acc.open = &types.ReferenceEntry{Name: text}
		return
	}

	if acc.open == nil {
		acc.open = &types.ReferenceEntry{}
	}
	entry := acc.open

	switch {
	case hasEmail:
		if entry.Email == "" {
			if email := emailPattern.FindString(text); email != "" {
				entry.Email = email
			} else {
				entry.Email = text
			}
		}
		if entry.Phone == "" && hasPhone {
			entry.Phone = strings.TrimSpace(phonePattern.FindString(text))
		}
	case hasPhone:
		if entry.Phone == "" {
			if phone := strings.TrimSpace(phonePattern.FindString(text)); phone != "" {
				entry.Phone = phone
			} else {
				entry.Phone = phoneLinePattern.FindString(text)
			}
		}
	case entry.Title == "":
		entry.Title = text
	case entry.Company == "":
		entry.Company = text
	}
}

// wantsNewEntry is true when there is no open entry, or the open one already
// looks complete: contact details seen, or both title and company filled.
func (acc *referenceAcc) wantsNewEntry() bool {
	if acc.open == nil {
		return true
	}
	e := acc.open
	return e.Email != "" || e.Phone != "" || (e.Title != "" && e.Company != "")
}

func (acc *referenceAcc) flush() {
	if acc.open == nil {
		return
	}
	if *acc.open != (types.ReferenceEntry{}) {
		acc.entries = append(acc.entries, *acc.open)
	}
	acc.open = nil
}
