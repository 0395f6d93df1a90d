package email

import (
	"fmt"
	"html"
	"strings"

	"crisiswatch/internal/notify"
)

// Templates renders crisis alert emails.
type Templates struct{}

// NewTemplates creates a new templates instance.
func NewTemplates() *Templates {
	return &Templates{}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #dc2626; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
        .critical { color: #dc2626; font-weight: 600; }
        .high { color: #ea580c; font-weight: 600; }
        code { background: #e5e7eb; padding: 2px 6px; border-radius: 4px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This alert was sent by CrisisWatch. Review the ticket in your ticketing system.</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), content)
}

// CrisisAlert renders the subject, HTML body, and text body for a crisis
// detection alert.
func (t *Templates) CrisisAlert(event notify.CrisisEvent) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Crisis alert: ticket %s (score %d)", event.TicketRef, event.CrisisScore)

	var kwHTML, kwText strings.Builder
	for _, kw := range event.Keywords {
		class := "value"
		if kw.SeverityLevel == "critical" {
			class = "critical"
		} else if kw.SeverityLevel == "high" {
			class = "high"
		}
		kwHTML.WriteString(fmt.Sprintf(`<li><code>%s</code> <span class="%s">(%s)</span></li>`,
			html.EscapeString(kw.Keyword), class, html.EscapeString(kw.SeverityLevel)))
		kwText.WriteString(fmt.Sprintf("  - %s (%s)\n", kw.Keyword, kw.SeverityLevel))
	}

	escalation := ""
	if event.Rules.AutoEscalate {
		escalation = `<p class="critical">Auto-escalation requested.</p>`
	}

	content := fmt.Sprintf(`
        <p>A support ticket was flagged as a potential crisis.</p>
        <div class="info-box">
            <p><span class="label">Ticket:</span> <span class="value">%s</span></p>
            <p><span class="label">Crisis score:</span> <span class="value">%d</span></p>
            <p><span class="label">Detected at:</span> <span class="value">%s</span></p>
        </div>
        <p class="label">Matched keywords:</p>
        <ul>%s</ul>
        %s`,
		html.EscapeString(event.TicketRef),
		event.CrisisScore,
		event.DetectedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		kwHTML.String(),
		escalation,
	)

	htmlBody = t.baseHTML("Crisis Alert", content)

	textBody = fmt.Sprintf(
		"A support ticket was flagged as a potential crisis.\n\nTicket: %s\nCrisis score: %d\nDetected at: %s\n\nMatched keywords:\n%s",
		event.TicketRef,
		event.CrisisScore,
		event.DetectedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		kwText.String(),
	)
	if event.Rules.AutoEscalate {
		textBody += "\nAuto-escalation requested.\n"
	}

	return subject, htmlBody, textBody
}
