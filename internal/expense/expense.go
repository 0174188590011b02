package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a cost row in the ledger, optionally assigned to a project.
// TaxPercent records input VAT for reporting; AmountCents is the gross
// amount actually paid.
type Expense struct {
	ID          uuid.UUID
	ProjectID   *uuid.UUID
	Description string
	AmountCents int64
	TaxPercent  decimal.Decimal
	Date        time.Time
	Category    string
	// Set when the expense was materialized from a recurring template.
	RecurringID *uuid.UUID
	CreatedAt   time.Time
}
