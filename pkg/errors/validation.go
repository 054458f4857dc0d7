package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateSelector validates a participation selector before it is handed
// to the host's query engine. The selector language itself is host-owned;
// this only rejects inputs that can never be valid in any of them.
//
// The validation rules are intentionally conservative:
//   - No empty selectors
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateSelector(selector string) error {
	if selector == "" {
		return New(ErrCodeInvalidSelector, "selector cannot be empty")
	}

	if len(selector) > 256 {
		return New(ErrCodeInvalidSelector, "selector too long (max 256 characters)")
	}

	for _, r := range selector {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSelector, "selector contains invalid control characters")
		}
	}

	return nil
}

// elementIDRegex matches element identifiers accepted in scene files.
var elementIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateElementID validates an element identifier from a scene file.
// Generated identifiers (UUIDs) always pass.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidScene, "element ID cannot be empty")
	}

	if !elementIDRegex.MatchString(id) {
		return New(ErrCodeInvalidScene, "invalid element ID: %q", id)
	}

	return nil
}

// ValidatePath validates a file path supplied on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateOutputFormat validates an export format name.
// The supported formats are "svg" and "png".
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "svg", "png":
		return nil
	default:
		return New(ErrCodeInvalidFormat, "unsupported output format: %q", format)
	}
}
