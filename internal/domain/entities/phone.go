package entities

import "strings"

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone returns "+<country code><digits>". Numbers longer than a
// national number that already start with the country code keep it.
func FormatPhone(raw, countryCode string) string {
	digits := DigitsOnly(raw)
	if digits == "" {
		return ""
	}
	cc := DigitsOnly(countryCode)
	if cc != "" && len(digits) > 10 && strings.HasPrefix(digits, cc) {
		return "+" + digits
	}
	return "+" + cc + digits
}
