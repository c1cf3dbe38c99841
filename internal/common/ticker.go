// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"regexp"
	"strings"
)

// tickerPattern matches US exchange ticker symbols, including class shares
// (BRK.B) and hyphenated symbols (BF-B).
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}([.-][A-Z]{1,2})?$`)

// NormalizeTicker uppercases and trims a ticker symbol.
// Cache keys are always the normalized form.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidateTicker normalizes a ticker and rejects anything that does not look
// like a US exchange symbol. Returns the normalized ticker on success.
func ValidateTicker(ticker string) (string, error) {
	normalized := NormalizeTicker(ticker)
	if normalized == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid ticker symbol %q", ticker)
	}
	return normalized, nil
}
