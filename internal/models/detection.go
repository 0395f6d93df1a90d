package models

// MatchedKeyword is one distinct keyword that matched a detection input.
type MatchedKeyword struct {
	Keyword       string `json:"keyword"`
	SeverityLevel string `json:"severity_level"`
	Weight        int    `json:"weight"`
}

// DetectionResult is the outcome of scanning one block of text. It is
// ephemeral: computed per request and never persisted.
type DetectionResult struct {
	IsCrisis         bool             `json:"is_crisis"`
	CrisisScore      int              `json:"crisis_score"`
	DetectedKeywords []MatchedKeyword `json:"detected_keywords"`
}
