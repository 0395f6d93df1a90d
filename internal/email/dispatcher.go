package email

import (
	"context"

	"crisiswatch/internal/config"
	"crisiswatch/internal/notify"
)

// Dispatcher sends crisis events as alert emails. It implements
// notify.Dispatcher so it can stand alongside or in place of the broker
// dispatcher.
type Dispatcher struct {
	service   *Service
	templates *Templates
	cfg       *config.Config
}

// NewDispatcher creates a new email dispatcher.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		service:   NewService(cfg),
		templates: NewTemplates(),
		cfg:       cfg,
	}
}

// DispatchCrisis emails the configured alert recipients. Keywords whose
// notification rules opted out of email alerts suppress the send.
func (d *Dispatcher) DispatchCrisis(_ context.Context, event notify.CrisisEvent) error {
	if !d.service.IsEnabled() || !event.Rules.EmailAlerts {
		return nil
	}

	subject, htmlBody, textBody := d.templates.CrisisAlert(event)
	return d.service.SendEmail(d.cfg.AlertRecipients(), subject, htmlBody, textBody)
}

// Close is a no-op.
func (d *Dispatcher) Close() error { return nil }
