package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeLabel validates a node label supplied by a user (CLI flag,
// scenario file, or URL path segment).
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - No control characters
//   - No characters that collide with the flow label syntax: ( ) ' ,
//   - Maximum length of 128 characters
//
// Scenario-level uniqueness and bus-reference checks are done separately by
// the scenario validator.
func ValidateNodeLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "node label cannot be empty")
	}

	if len(label) > 128 {
		return New(ErrCodeInvalidLabel, "node label too long (max 128 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "node label contains control characters")
		}
	}

	// These characters are stripped by the legend label rewrite, so a label
	// containing them would not survive a plot round-trip intact.
	if strings.ContainsAny(label, "()',") {
		return New(ErrCodeInvalidLabel, "node label cannot contain any of ( ) ' , : %q", label)
	}

	return nil
}

// ValidateScenarioName validates a scenario name used as a path segment by
// the HTTP server and as a directory name by the CLI.
func ValidateScenarioName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "scenario name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "scenario name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "scenario name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidInput, "scenario name cannot start with a dot")
	}

	return nil
}
