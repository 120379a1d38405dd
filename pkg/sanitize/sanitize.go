// Package sanitize scrubs contact details out of free text before it is
// logged or echoed back in error messages.
package sanitize

import "regexp"

// Plain email, case-insensitive.
var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)

// Common phone shapes: +xx..., (xxx) xxx-xxxx, 08xx...
// Only digits, spaces, dashes, dots, parentheses and a leading plus are
// allowed, with at least 9 characters so short numbers survive.
var rePhone = regexp.MustCompile(`\+?\(?\d[\d\s\-\.()]{7,}\d`)

// RedactPII replaces emails and phone numbers with placeholders.
func RedactPII(s string) string {
	if s == "" {
		return s
	}
	s = reEmail.ReplaceAllString(s, "[redacted email]")
	s = rePhone.ReplaceAllString(s, "[redacted phone]")
	return s
}

// Summary trims s to at most max bytes, backing up to the last space.
func Summary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && s[i] != ' ' {
		i--
	}
	if i <= 0 {
		i = max
	}
	return s[:i] + "…"
}
