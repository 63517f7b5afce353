package errors

import (
	"strings"
	"unicode"
)

// MaxNameLength bounds item identifiers read from instance files.
const MaxNameLength = 256

// ValidateName validates an item identifier for safety and round-tripping.
// Identifiers are whitespace-separated tokens in the text format, so they
// must be non-empty and contain no whitespace or control characters.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "identifier %q contains whitespace or control characters", name)
		}
	}
	return nil
}

// ValidateCount validates a declared count from an instance header.
// what names the quantity in the error message ("item", "constraint").
func ValidateCount(what string, n, min int) error {
	if n < min {
		return New(ErrCodeInvalidInput, "%s count must be at least %d, got %d", what, min, n)
	}
	return nil
}

// ValidateFormat checks a requested output format against the allowed set.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", format, strings.Join(allowed, ", "))
}
