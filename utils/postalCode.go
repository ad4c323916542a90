package utils

import (
	"strings"
	"unicode"
)

// UnknownPostalCode is stored when no postal code can be derived from an
// address.
const UnknownPostalCode = "Unknown"

// ExtractPostalCode pulls a postal code out of a free-text address of the
// conventional "..., City, ZIP, Country" shape: the second-to-last
// comma-separated part, trimmed. It is a heuristic, not a validator, and
// never fails outward: anything it cannot handle comes back as "Unknown".
func ExtractPostalCode(address string) string {
	if strings.TrimSpace(address) == "" {
		return UnknownPostalCode
	}
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return UnknownPostalCode
	}
	code := strings.TrimSpace(parts[len(parts)-2])
	if code == "" {
		return UnknownPostalCode
	}
	return code
}

// NormalizePostalCode strips everything non-alphanumeric and lower-cases the
// rest, so "500 081", "500-081" and "500081" compare equal. Purely
// structural; it does not validate postal-code format.
func NormalizePostalCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
