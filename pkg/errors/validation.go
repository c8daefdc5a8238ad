package errors

import (
	"strings"
	"unicode"
)

// MaxPointNameLength bounds the length of a point name in bytes.
const MaxPointNameLength = 256

// ValidatePointName validates the display name of a catalogue point.
//
// Names end up inside SVG text nodes, DOT identifiers and cache keys, so the
// rules are conservative:
//   - No empty or whitespace-only names
//   - No control characters or null bytes
//   - Maximum length of 256 bytes
func ValidatePointName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "point name cannot be empty")
	}

	if len(name) > MaxPointNameLength {
		return New(ErrCodeInvalidInput, "point name too long (max %d characters)", MaxPointNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "point name %q contains control characters", name)
		}
	}

	return nil
}

// ValidateOutputName validates an artifact base name supplied by a caller.
// It must be a simple basename without path components.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "output name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "output name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "output name cannot contain path traversal sequences (..)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output name contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a backend URL string against the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
