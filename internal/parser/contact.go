package parser

import (
	"regexp"
	"strings"

	"resumeimport/internal/types"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}\b`)
	phonePattern    = regexp.MustCompile(`(?:\+?\d{1,3}[-. ]?)?\(?\d{3,4}\)?[-. ]?\d{3}[-. ]?\d{4}\b`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[a-zA-Z0-9_-]+/?`)
	websitePattern  = regexp.MustCompile(`(?:(?i:https?://))?(?:(?i:www\.))?[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.(?:com|org|net|io|me|dev|in|co|ai|app)\b(?:/[\w./-]*)?`)
	addressPattern  = regexp.MustCompile(`(?:[A-Z][a-z]+ ?)+, *[A-Z]{2}(?: \d{5})?\b|(?:[A-Z][a-z]+ ?)+, *[A-Z][a-z]{2,}`)

	// phone-shaped token used for line classification, looser than phonePattern
	phoneShape = regexp.MustCompile(`\d{3}[-. ]?\d{3}`)
)

const (
	maxAddressLen = 40
	// addresses are only looked for in the document header
	addressWindow = 15
)

var addressProseMarkers = []string{"using", "built"}

// ExtractContact runs each contact detector over normalized text.
// The first match of each detector wins; FullName is left to DetectName.
func ExtractContact(normalized string) types.ContactInfo {
	var info types.ContactInfo
	if normalized == "" {
		return info
	}

	info.Email = emailPattern.FindString(normalized)
	info.Phone = strings.TrimSpace(phonePattern.FindString(normalized))
	info.LinkedIn = strings.TrimSuffix(linkedInPattern.FindString(normalized), "/")
	info.Website = findWebsite(normalized)
	info.Address = findAddress(normalized)
	return info
}

// findWebsite returns the first URL-like token that is neither a LinkedIn
// profile nor the domain part of an email address.
func findWebsite(text string) string {
	scrubbed := emailPattern.ReplaceAllString(text, " ")
	scrubbed = linkedInPattern.ReplaceAllString(scrubbed, " ")

	for _, candidate := range websitePattern.FindAllString(scrubbed, -1) {
		lower := strings.ToLower(candidate)
		if strings.Contains(lower, "linkedin") || strings.Contains(lower, "gmail") {
			continue
		}
		return strings.TrimRight(candidate, "./")
	}
	return ""
}

func findAddress(text string) string {
	lines := Lines(text)
	if len(lines) > addressWindow {
		lines = lines[:addressWindow]
	}
	for _, line := range lines {
		candidate := strings.TrimSpace(addressPattern.FindString(line))
		if candidate == "" || len(candidate) >= maxAddressLen {
			continue
		}
		lower := strings.ToLower(candidate)
		prose := false
		for _, marker := range addressProseMarkers {
			if strings.Contains(lower, marker) {
				prose = true
				break
			}
		}
		if !prose {
			return candidate
		}
	}
	return ""
}

// isContactLine reports whether a line carries an email, a phone-shaped token
// or a profile link.
func isContactLine(line string) bool {
	return strings.Contains(line, "@") || phoneShape.MatchString(line) ||
		linkedInPattern.MatchString(line) || urlPattern.MatchString(line)
}
