package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateUserID validates a kit owner identifier for safety and correctness.
// User IDs become file names and database keys, so the validation rejects
// anything that could be used for path traversal or injection.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateUserID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "user id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "user id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "user id contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "user id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateSourceURL validates an overlay element source reference.
// A source is either an http(s) URL or a local file path. Remote sources
// must parse as absolute URLs with a host; local paths must be non-empty
// and free of null bytes.
func ValidateSourceURL(src string) error {
	if src == "" {
		return New(ErrCodeInvalidSource, "source url cannot be empty")
	}

	if strings.Contains(src, "\x00") {
		return New(ErrCodeInvalidSource, "source url contains null byte")
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		u, err := url.Parse(src)
		if err != nil {
			return Wrap(ErrCodeInvalidSource, err, "malformed source url %q", src)
		}
		if u.Host == "" {
			return New(ErrCodeInvalidSource, "source url %q has no host", src)
		}
	}

	return nil
}
