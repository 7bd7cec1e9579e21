package sms

import "strings"

// NormalizePhone converts a loosely formatted number into digits-only
// international form. Local numbers of nine digits without a leading "+" are
// assumed to belong to countryCode.
func NormalizePhone(phone, countryCode string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, "+") {
		return strings.TrimPrefix(cleaned, "+")
	}
	if len(cleaned) == 9 && countryCode != "" {
		return countryCode + cleaned
	}
	return cleaned
}
