package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels in ascending order of urgency.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SeverityLevels lists every valid severity value.
var SeverityLevels = []string{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// ValidSeverity reports whether s is one of the four defined severity levels.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// NotificationRules describes which escalation behaviors the external
// dispatcher should apply when a keyword triggers. The detection core only
// carries these flags; it never interprets them.
type NotificationRules struct {
	NotifyAdmins     bool `json:"notify_admins"`
	NotifyCounselors bool `json:"notify_counselors"`
	AutoEscalate     bool `json:"auto_escalate"`
	EmailAlerts      bool `json:"email_alerts"`
}

// Merge returns the union of two rule sets.
func (r NotificationRules) Merge(other NotificationRules) NotificationRules {
	return NotificationRules{
		NotifyAdmins:     r.NotifyAdmins || other.NotifyAdmins,
		NotifyCounselors: r.NotifyCounselors || other.NotifyCounselors,
		AutoEscalate:     r.AutoEscalate || other.AutoEscalate,
		EmailAlerts:      r.EmailAlerts || other.EmailAlerts,
	}
}

// Keyword represents one configured crisis keyword or phrase.
// Text is normalized (trimmed, lower-cased) at storage time. A nil
// CategoryID means the keyword applies globally to all ticket categories.
type Keyword struct {
	ID                uuid.UUID         `json:"id"`
	Text              string            `json:"text"`
	SeverityLevel     string            `json:"severity_level"`
	CategoryID        *uuid.UUID        `json:"category_id"`
	IsActive          bool              `json:"is_active"`
	ExactMatch        bool              `json:"exact_match"`
	CaseSensitive     bool              `json:"case_sensitive"`
	TriggerCount      int64             `json:"trigger_count"`
	LastTriggeredAt   *time.Time        `json:"last_triggered_at"`
	ResponseAction    string            `json:"response_action"`
	NotificationRules NotificationRules `json:"notification_rules"`
	CreatedBy         *string           `json:"created_by"`
	UpdatedBy         *string           `json:"updated_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TicketCategory is the minimal view of a ticket category this service
// needs: keywords may be scoped to one, and exports report its name.
type TicketCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
