// Package notify delivers the processing outcome to the requester and keeps
// the notification-sent marker that makes dispatch idempotent under queue
// redelivery.
package notify

import (
	"context"
	"log/slog"
	"time"

	"garantia/internal/domain"
)

// Notification is the outbound payload: requester contact plus the outcome
// summary. Built once from the finalized ticket so every channel sends the
// same content.
type Notification struct {
	TicketID     string        `json:"ticket_id"`
	Recipient    string        `json:"email"`
	FullName     string        `json:"nome_completo"`
	Status       domain.Status `json:"status"`
	Reason       string        `json:"motivo,omitempty"`
	Device       string        `json:"aparelho"`
	SerialNumber string        `json:"numero_serie"`
	IntakeTime   time.Time     `json:"data_abertura"`
}

// Notifier delivers one notification. A returned error must leave no partial
// state behind; the processor translates it into queue redelivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// FromTicket builds the outcome notification for a finalized ticket.
func FromTicket(t domain.Ticket) Notification {
	return Notification{
		TicketID:     t.TicketID,
		Recipient:    t.Email,
		FullName:     t.FullName,
		Status:       t.Status,
		Reason:       t.RejectionReason,
		Device:       t.Device.Brand + " " + t.Device.Model,
		SerialNumber: t.Device.SerialNumber,
		IntakeTime:   t.IntakeTime,
	}
}

// LogNotifier writes the notification to the log. Development default; it
// never fails, so in-memory mode exercises the happy dispatch path.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.logger.InfoContext(ctx, "ticket outcome notification",
		"ticket_id", notification.TicketID,
		"email", notification.Recipient,
		"status", string(notification.Status),
		"reason", notification.Reason,
		"subject", Subject(notification),
	)
	return nil
}
