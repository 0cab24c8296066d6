package registration

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	phonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone removes every whitespace rune and leaves digits and the
// leading + untouched.
func NormalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
}

// IsValidPhone accepts an optional leading + followed by 7 to 15 ASCII
// digits once whitespace is removed.
func IsValidPhone(raw string) bool {
	return phonePattern.MatchString(NormalizePhone(raw))
}

// IsValidEmail is a permissive local@domain.tld check, not RFC 5322.
func IsValidEmail(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return false
	}
	return emailPattern.MatchString(v)
}
