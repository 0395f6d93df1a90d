package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"crisiswatch/internal/config"
	"crisiswatch/internal/models"
	"crisiswatch/internal/notify"
)

func testEvent() notify.CrisisEvent {
	return notify.CrisisEvent{
		TicketRef:   "TICKET-42",
		CrisisScore: 1100,
		Keywords: []models.MatchedKeyword{
			{Keyword: "kill myself", SeverityLevel: models.SeverityCritical, Weight: 1000},
			{Keyword: "hurt myself", SeverityLevel: models.SeverityHigh, Weight: 100},
		},
		Rules:      models.NotificationRules{NotifyAdmins: true, EmailAlerts: true, AutoEscalate: true},
		DetectedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestServiceDisabledWithoutSMTP(t *testing.T) {
	svc := NewService(&config.Config{})

	if svc.IsEnabled() {
		t.Error("IsEnabled() = true with no SMTP config")
	}
	if err := svc.SendEmail([]string{"oncall@example.com"}, "subject", "<p>html</p>", "text"); err != nil {
		t.Errorf("SendEmail() on disabled service error = %v, want nil", err)
	}
}

func TestDispatcherSkipsWhenEmailAlertsOff(t *testing.T) {
	// SMTP configured but the matched keywords did not request email alerts.
	cfg := &config.Config{
		SMTPHost:    "smtp.example.com",
		SMTPFrom:    "alerts@example.com",
		AlertEmails: "oncall@example.com",
	}
	d := NewDispatcher(cfg)

	event := testEvent()
	event.Rules.EmailAlerts = false

	if err := d.DispatchCrisis(context.Background(), event); err != nil {
		t.Errorf("DispatchCrisis() error = %v, want nil", err)
	}
}

func TestCrisisAlertTemplate(t *testing.T) {
	subject, htmlBody, textBody := NewTemplates().CrisisAlert(testEvent())

	if !strings.Contains(subject, "TICKET-42") || !strings.Contains(subject, "1100") {
		t.Errorf("subject = %q, want ticket ref and score", subject)
	}

	for _, want := range []string{"kill myself", "hurt myself", "critical", "high", "Auto-escalation"} {
		if !strings.Contains(htmlBody, want) {
			t.Errorf("html body missing %q", want)
		}
	}

	for _, want := range []string{"TICKET-42", "kill myself (critical)", "hurt myself (high)", "2026-03-14 09:26:53 UTC", "Auto-escalation requested."} {
		if !strings.Contains(textBody, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestCrisisAlertTemplateEscapesHTML(t *testing.T) {
	event := testEvent()
	event.TicketRef = `<script>alert("x")</script>`

	_, htmlBody, _ := NewTemplates().CrisisAlert(event)

	if strings.Contains(htmlBody, "<script>") {
		t.Error("html body contains unescaped ticket ref")
	}
	if !strings.Contains(htmlBody, "&lt;script&gt;") {
		t.Error("html body missing escaped ticket ref")
	}
}
