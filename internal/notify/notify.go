// Package notify carries detected crises to the external notification
// dispatcher. This core decides whether a notification is requested and
// which escalation flags apply; delivery (email, paging, UI) is owned by
// the ticketing application consuming the events.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"crisiswatch/internal/models"
)

// CrisisEvent describes one production detection that flagged a crisis.
type CrisisEvent struct {
	TicketRef   string                   `json:"ticket_ref"`
	CategoryID  *uuid.UUID               `json:"category_id"`
	CrisisScore int                      `json:"crisis_score"`
	Keywords    []models.MatchedKeyword  `json:"keywords"`
	Rules       models.NotificationRules `json:"rules"`
	DetectedAt  time.Time                `json:"detected_at"`
}

// Dispatcher delivers crisis events to the external collaborator.
// Dispatch is fire-and-forget from the detection path: failures are logged
// and never surfaced to the person submitting the ticket.
type Dispatcher interface {
	DispatchCrisis(ctx context.Context, event CrisisEvent) error
	Close() error
}

// LogDispatcher is the fallback dispatcher used when no message broker is
// configured. It records the event in the service log and nothing else.
type LogDispatcher struct{}

// DispatchCrisis logs the crisis event.
func (LogDispatcher) DispatchCrisis(_ context.Context, event CrisisEvent) error {
	slog.Warn("crisis detected",
		"ticket_ref", event.TicketRef,
		"crisis_score", event.CrisisScore,
		"keywords", len(event.Keywords),
		"auto_escalate", event.Rules.AutoEscalate,
	)
	return nil
}

// Close is a no-op.
func (LogDispatcher) Close() error { return nil }

// Fanout delivers each event to every wrapped dispatcher. Delivery
// failures do not stop the remaining dispatchers; the first error is
// returned.
type Fanout []Dispatcher

// DispatchCrisis forwards the event to all dispatchers.
func (f Fanout) DispatchCrisis(ctx context.Context, event CrisisEvent) error {
	var first error
	for _, d := range f {
		if err := d.DispatchCrisis(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes all dispatchers.
func (f Fanout) Close() error {
	var first error
	for _, d := range f {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
