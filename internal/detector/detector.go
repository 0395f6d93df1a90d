// Package detector scans ticket text for configured crisis keywords and
// turns the matches into a severity-weighted classification. Detection is a
// pure read-only computation over a point-in-time snapshot of the active
// keyword set; it is safe to run from any number of concurrent requests.
package detector

import (
	"context"

	"github.com/google/uuid"

	"crisiswatch/internal/models"
)

// KeywordSource provides the active keyword snapshot for a category scope.
type KeywordSource interface {
	ListActiveKeywords(ctx context.Context, categoryID *uuid.UUID) ([]models.Keyword, error)
}

// Detector matches free text against the active keyword set and scores the
// result.
type Detector struct {
	source KeywordSource
}

// New creates a detector backed by the given keyword source.
func New(source KeywordSource) *Detector {
	return &Detector{source: source}
}

// Detect runs matching and scoring in one call. The returned raw matches
// let the caller record triggers and merge notification rules on the
// production path; the test path discards them.
func (d *Detector) Detect(ctx context.Context, text string, categoryID *uuid.UUID) (models.DetectionResult, []RawMatch, error) {
	matches, err := d.Match(ctx, text, categoryID)
	if err != nil {
		return models.DetectionResult{DetectedKeywords: []models.MatchedKeyword{}}, nil, err
	}
	return Score(matches), matches, nil
}

// MatchedIDs extracts the keyword ids from a set of raw matches.
func MatchedIDs(matches []RawMatch) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Keyword.ID)
	}
	return ids
}

// MergeRules returns the union of the notification rules of all matched
// keywords.
func MergeRules(matches []RawMatch) models.NotificationRules {
	var rules models.NotificationRules
	for _, m := range matches {
		rules = rules.Merge(m.Keyword.NotificationRules)
	}
	return rules
}
