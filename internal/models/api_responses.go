package models

import (
	"time"

	"github.com/google/uuid"
)

// ImportError describes one item that failed during a bulk import.
type ImportError struct {
	Item   string `json:"item"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import. Partial success is normal: the
// batch always runs to completion and every per-item failure is listed.
type ImportResult struct {
	ImportedCount int           `json:"imported_count"`
	UpdatedCount  int           `json:"updated_count"`
	Errors        []ImportError `json:"errors"`
}

// ExportRow is the projection of one keyword for CSV/JSON export.
type ExportRow struct {
	Text            string     `json:"text"`
	SeverityLevel   string     `json:"severity_level"`
	CategoryName    string     `json:"category_name"`
	IsActive        bool       `json:"is_active"`
	ExactMatch      bool       `json:"exact_match"`
	CaseSensitive   bool       `json:"case_sensitive"`
	TriggerCount    *int64     `json:"trigger_count,omitempty"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
}

// SeverityCount is one row of the by-severity statistics breakdown.
type SeverityCount struct {
	SeverityLevel string `json:"severity_level"`
	Count         int64  `json:"count"`
}

// TriggerStat is one row of the most/least triggered rankings.
type TriggerStat struct {
	ID              uuid.UUID  `json:"id"`
	Text            string     `json:"text"`
	SeverityLevel   string     `json:"severity_level"`
	TriggerCount    int64      `json:"trigger_count"`
	LastTriggeredAt *time.Time `json:"last_triggered_at"`
}

// KeywordStats aggregates the statistics query for the admin surface.
type KeywordStats struct {
	Total          int64           `json:"total"`
	Active         int64           `json:"active"`
	Inactive       int64           `json:"inactive"`
	Global         int64           `json:"global"`
	CategoryBound  int64           `json:"category_bound"`
	NeverTriggered int64           `json:"never_triggered"`
	BySeverity     []SeverityCount `json:"by_severity"`
	MostTriggered  []TriggerStat   `json:"most_triggered"`
}

// BulkActionResult reports how many keywords a bulk admin action touched.
type BulkActionResult struct {
	Affected int64 `json:"affected"`
}
