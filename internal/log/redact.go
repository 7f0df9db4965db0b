package log

import "strings"

const redactedPlaceholder = "***"

var defaultSecretPatterns = []string{
	"token",
	"key",
	"password",
	"secret",
	"authorization",
}

// Redactor masks field values whose key looks secret-like before they reach
// a log sink. This is the "logging/redaction plumbing" spec.md §1 treats as
// an external collaborator.
type Redactor struct {
	patterns []string
}

// NewRedactor builds a Redactor from the built-in secret-like patterns plus
// any caller-supplied extras.
func NewRedactor(extra []string) *Redactor {
	patterns := make([]string, 0, len(defaultSecretPatterns)+len(extra))
	patterns = append(patterns, defaultSecretPatterns...)
	for _, e := range extra {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			patterns = append(patterns, e)
		}
	}
	return &Redactor{patterns: patterns}
}

// ShouldRedact reports whether a field key matches a secret-like pattern.
func (r *Redactor) ShouldRedact(key string) bool {
	if r == nil {
		return false
	}
	lower := strings.ToLower(key)
	for _, p := range r.patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Mask returns the redaction placeholder if key should be redacted,
// otherwise returns value unchanged.
func (r *Redactor) Mask(key string, value any) any {
	if r.ShouldRedact(key) {
		return redactedPlaceholder
	}
	return value
}
