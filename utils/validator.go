// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

// InstitutionalEmailPattern matches addresses whose domain is exactly one of
// domains.
func InstitutionalEmailPattern(domains []string) *regexp.Regexp {
	quoted := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d != "" {
			quoted = append(quoted, regexp.QuoteMeta(d))
		}
	}
	if len(quoted) == 0 {
		// nothing configured: match no address
		return regexp.MustCompile(`^\b$`)
	}
	return regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@(` + strings.Join(quoted, "|") + `)$`)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
