package detector

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"crisiswatch/internal/models"
)

// RawMatch records that one configured keyword matched the input.
type RawMatch struct {
	Keyword models.Keyword
}

// Match scans text against the active keywords for the given category
// scope (global keywords plus category-specific ones). A keyword that
// occurs anywhere in the text yields exactly one RawMatch regardless of
// how many times it recurs. Malformed or empty input is never an error;
// it simply produces no matches.
func (d *Detector) Match(ctx context.Context, text string, categoryID *uuid.UUID) ([]RawMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	keywords, err := d.source.ListActiveKeywords(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	// Normalize once; per-keyword case folding happens on top of this.
	normalized := norm.NFKC.String(text)
	folded := strings.ToLower(normalized)

	var matches []RawMatch
	for _, kw := range keywords {
		if kw.Text == "" || len(kw.Text) > len(normalized) {
			continue
		}

		haystack := folded
		if kw.CaseSensitive {
			haystack = normalized
		}

		if matchesKeyword(haystack, kw) {
			matches = append(matches, RawMatch{Keyword: kw})
		}
	}

	return matches, nil
}

// matchesKeyword applies the keyword's match mode. Keyword text is stored
// trimmed and lower-cased, so a case-sensitive keyword matches only
// lower-case occurrences in the input.
func matchesKeyword(haystack string, kw models.Keyword) bool {
	if kw.ExactMatch {
		return containsTokenSequence(haystack, kw.Text)
	}
	return strings.Contains(haystack, kw.Text)
}

// containsTokenSequence reports whether needle occurs in haystack as a
// contiguous sequence of whole tokens. Tokens are maximal runs of letters
// and digits; everything else is a boundary. "panic attack" is found in
// "I had a panic attack" but not in "no panic attacks here", because
// "attacks" is a different token than "attack".
func containsTokenSequence(haystack, needle string) bool {
	want := tokenize(needle)
	if len(want) == 0 {
		return false
	}
	have := tokenize(haystack)

	for i := 0; i+len(want) <= len(have); i++ {
		found := true
		for j := range want {
			if have[i+j] != want[j] {
				found = false
				break
			}
		}
		if found {
			return true
		}
	}
	return false
}

// tokenize splits text into alphanumeric tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
