package member

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone canonicalizes a phone number to +<country><number> so that
// lookups and the uniqueness constraint see one spelling per line. Local
// numbers (leading 0) get the configured country code; "00" international
// prefixes become "+".
func NormalizePhone(raw, countryCode string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// separators people type, dropped
		default:
			return "", ErrInvalidPhone
		}
	}

	p := b.String()
	switch {
	case p == "" || p == "+":
		return "", ErrInvalidPhone
	case strings.HasPrefix(p, "+"):
		// already international
	case strings.HasPrefix(p, "00"):
		p = "+" + p[2:]
	case strings.HasPrefix(p, "0"):
		p = "+" + countryCode + p[1:]
	default:
		p = "+" + countryCode + p
	}

	if len(p) < 8 {
		return "", ErrInvalidPhone
	}
	return p, nil
}
