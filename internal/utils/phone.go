package utils

import "strings"

// NormalizePhone converts a local phone number to its international form,
// matching the convention used on both read and write paths of the API:
// spaces and dashes are stripped, a leading 0 is dropped, and the country
// code (+251 by default) is prefixed when missing.
func NormalizePhone(raw string, countryCode string) string {
	phone := strings.ReplaceAll(raw, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	if phone == "" {
		return ""
	}
	if countryCode == "" {
		countryCode = "+251"
	}
	if strings.HasPrefix(phone, countryCode) {
		return phone
	}
	return countryCode + strings.TrimLeft(phone, "0")
}

// LocalPhone strips the country code back off for display forms that expect
// the local 0-prefixed number.
func LocalPhone(phone string, countryCode string) string {
	if countryCode == "" {
		countryCode = "+251"
	}
	if trimmed, ok := strings.CutPrefix(phone, countryCode); ok {
		return "0" + trimmed
	}
	return phone
}
