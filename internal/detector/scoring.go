package detector

import "crisiswatch/internal/models"

// Severity weights. The score of a detection is the sum of the weights of
// all distinct matched keywords, so any single critical match alone pushes
// the score to 1000, the threshold consumers treat as immediate escalation.
const (
	WeightCritical = 1000
	WeightHigh     = 100
	WeightMedium   = 10
	WeightLow      = 1
)

// SeverityWeight maps a severity level to its score weight.
func SeverityWeight(level string) int {
	switch level {
	case models.SeverityCritical:
		return WeightCritical
	case models.SeverityHigh:
		return WeightHigh
	case models.SeverityMedium:
		return WeightMedium
	default:
		return WeightLow
	}
}

// Score turns raw matches into a DetectionResult. The result is a crisis
// iff at least one matched keyword is high or critical severity; the
// numeric score is independent of that flag and exists for triage ordering.
func Score(matches []RawMatch) models.DetectionResult {
	result := models.DetectionResult{
		DetectedKeywords: make([]models.MatchedKeyword, 0, len(matches)),
	}

	for _, m := range matches {
		weight := SeverityWeight(m.Keyword.SeverityLevel)
		result.CrisisScore += weight
		result.DetectedKeywords = append(result.DetectedKeywords, models.MatchedKeyword{
			Keyword:       m.Keyword.Text,
			SeverityLevel: m.Keyword.SeverityLevel,
			Weight:        weight,
		})

		switch m.Keyword.SeverityLevel {
		case models.SeverityCritical, models.SeverityHigh:
			result.IsCrisis = true
		}
	}

	return result
}
