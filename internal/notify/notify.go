// Package notify carries the fire-and-forget events the engine emits for
// the email/notification subsystem. The engine never waits on a notifier
// and never fails an operation because one did.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// InvoicePaid is emitted after an invoice is successfully marked paid.
type InvoicePaid struct {
	ClientID      uuid.UUID
	InvoiceNumber string
	TotalCents    int64
}

type Notifier interface {
	NotifyInvoicePaid(ctx context.Context, ev InvoicePaid)
}

// Log is the default notifier: it just records the event.
type Log struct{}

func (Log) NotifyInvoicePaid(_ context.Context, ev InvoicePaid) {
	slog.Info("invoice paid",
		"client_id", ev.ClientID,
		"invoice_number", ev.InvoiceNumber,
		"total_cents", ev.TotalCents,
	)
}
