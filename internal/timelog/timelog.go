package timelog

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a block of logged work time. Once billed it points at the
// invoice that covered it; that link is set exactly once and never
// cleared.
type Entry struct {
	ID              uuid.UUID
	ProjectID       uuid.UUID
	Description     string
	Date            time.Time
	DurationSeconds int64
	InvoiceID       *uuid.UUID
	CreatedAt       time.Time
}

// Billed reports whether the entry has been attached to an invoice.
func (e *Entry) Billed() bool {
	return e.InvoiceID != nil
}

// Hours returns the entry duration in hours.
func (e *Entry) Hours() float64 {
	return float64(e.DurationSeconds) / 3600
}
