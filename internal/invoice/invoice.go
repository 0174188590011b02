package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/money"
)

// ErrAlreadyPaid signals an attempt to mark a paid invoice paid again.
var ErrAlreadyPaid = errors.New("invoice already paid")

// Invoice is an issued billing document. Subtotal and total are always
// recomputed from the items when the invoice is built; they are never
// edited independently of them.
type Invoice struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	ProjectID     *uuid.UUID
	Number        string
	IssueDate     time.Time
	DueDate       time.Time
	Items         []money.Item
	TaxPercent    decimal.Decimal
	SubtotalCents int64
	TotalCents    int64
	Paid          bool
	PaymentDate   *time.Time
	// Provenance of invoices materialized from a recurring template:
	// the template id and the period occurrence it covers. Together they
	// keep a re-run of the billing scheduler from generating twice.
	RecurringID *uuid.UUID
	PeriodDate  *time.Time
	CreatedAt   time.Time
}

// MarkPaid transitions the invoice to paid. Paying twice is a guarded
// no-op error; the caller must not persist anything in that case.
func (inv *Invoice) MarkPaid(paidAt time.Time) error {
	if inv.Paid {
		return ErrAlreadyPaid
	}

	inv.Paid = true
	inv.PaymentDate = &paidAt

	return nil
}

// Number formats an invoice number as INV-{year}-{sequence}, the one
// externally visible string format the engine owns. The sequence is
// left-padded to three digits and keeps growing past 999 unpadded.
func Number(year, seq int) string {
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}
