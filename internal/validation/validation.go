package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"crisiswatch/internal/models"
)

// MaxKeywordLength caps the length of a configured keyword phrase.
const MaxKeywordLength = 200

// NormalizeKeyword normalizes keyword text the way it is stored: unicode
// NFKC normalization, internal whitespace collapsed, trimmed, lower-cased.
// Duplicate detection compares this normalized form.
func NormalizeKeyword(text string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
	text = strings.Join(strings.Fields(text), " ")
	return strings.ToLower(text)
}

// ValidateKeywordText checks a keyword phrase for storage.
func ValidateKeywordText(text string) (bool, string) {
	if text == "" {
		return false, "keyword text is required"
	}
	if len(text) > MaxKeywordLength {
		return false, "keyword text must be at most 200 characters"
	}
	return true, ""
}

// ValidateSeverity checks that severity is one of the four defined levels.
func ValidateSeverity(severity string) (bool, string) {
	if !models.ValidSeverity(severity) {
		return false, "severity_level must be one of: low, medium, high, critical"
	}
	return true, ""
}

// ValidateDetectionText checks detection input against the configured
// maximum length. Empty text is valid; it simply produces no matches.
func ValidateDetectionText(text string, maxLen int) (bool, string) {
	if maxLen > 0 && len(text) > maxLen {
		return false, "text exceeds the maximum detection length"
	}
	return true, ""
}
