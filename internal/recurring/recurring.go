package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/money"
)

// Frequency is how often a template materializes a document.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// InvoiceTemplate describes a periodic billing pattern. It spawns
// concrete invoices but holds no reference back to them; generation is
// one-way.
type InvoiceTemplate struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	ProjectID   *uuid.UUID
	Description string
	Items       []money.Item
	TaxPercent  decimal.Decimal
	Frequency   Frequency
	StartDate   time.Time
	NextDueDate time.Time
	CreatedAt   time.Time
}

// ExpenseTemplate describes a periodic cost (rent, subscriptions).
type ExpenseTemplate struct {
	ID          uuid.UUID
	Description string
	AmountCents int64
	Category    string
	Frequency   Frequency
	StartDate   time.Time
	NextDueDate time.Time
	CreatedAt   time.Time
}

// NextOccurrence advances a due date by one period. The day-of-month is
// preserved where the target month supports it and clamped to the last
// valid day otherwise: Jan 31 monthly becomes Feb 29 in a leap year and
// advances to Mar 29 from there, not back to the 31st. Plain AddDate
// would overflow Jan 31 into March, which is why this exists.
func NextOccurrence(d time.Time, f Frequency) time.Time {
	year, month, day := d.Date()

	switch f {
	case FrequencyYearly:
		year++
	default:
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	if last := lastDayOf(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, d.Location())
}

// ActiveIn reports whether an expense template produces a charge in the
// given month: monthly templates from their start date onward, yearly
// templates only in their start month.
func (t *ExpenseTemplate) ActiveIn(year int, month time.Month) bool {
	startYear, startMonth, _ := t.StartDate.Date()

	if year < startYear || (year == startYear && month < startMonth) {
		return false
	}

	if t.Frequency == FrequencyYearly {
		return month == startMonth
	}

	return true
}

func lastDayOf(year int, month time.Month) int {
	// Day zero of the next month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
