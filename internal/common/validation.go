package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeimport/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveOutputFormat picks the --format value, or defaultFormat when the
// flag is empty, and checks it against supportedFormats.
func ResolveOutputFormat(flag, defaultFormat string, supportedFormats []string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = defaultFormat
	}
	if err := ValidateOutputFormat(format, supportedFormats); err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil).
			WithContext("format", format)
	}
	return format, nil
}
