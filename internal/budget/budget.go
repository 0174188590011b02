package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/money"
)

// Status is the lifecycle state of a budget (quotation).
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Budget is a quotation sent to a client. Its amount is always the sum
// of its items.
type Budget struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Description string
	Items       []money.Item
	AmountCents int64
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// StateError is returned when a transition is attempted on a budget that
// has already been decided. The message is shown to the user verbatim;
// acceptance may come from a client-facing page, so a decided budget must
// never be re-decided silently.
type StateError struct {
	Current Status
}

func (e *StateError) Error() string {
	return "budget already " + string(e.Current)
}

// Accept moves a pending budget to accepted.
func (b *Budget) Accept() error {
	if b.Status != StatusPending {
		return &StateError{Current: b.Status}
	}

	b.Status = StatusAccepted

	return nil
}

// Reject moves a pending budget to rejected.
func (b *Budget) Reject() error {
	if b.Status != StatusPending {
		return &StateError{Current: b.Status}
	}

	b.Status = StatusRejected

	return nil
}
