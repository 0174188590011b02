package proposal

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a proposal.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Proposal is a pitch document sent to a client. Proposals are created
// directly in sent; the draft state only exists for ones explicitly
// saved before sending.
type Proposal struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Title       string
	Content     string
	AmountCents int64
	Status      Status
	SignedBy    *string
	SignedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// StateError is the guarded-transition failure. Acceptance can arrive
// from a client-facing page, and an accepted deal counted twice would
// corrupt the sales funnel, so a proposal that is not in sent refuses
// every decision with a message naming its current state.
type StateError struct {
	Current Status
}

func (e *StateError) Error() string {
	if e.Current == StatusDraft {
		return "proposal not yet sent"
	}

	return "proposal already " + string(e.Current)
}

// Send moves a draft to sent.
func (p *Proposal) Send() error {
	if p.Status != StatusDraft {
		return &StateError{Current: p.Status}
	}

	p.Status = StatusSent

	return nil
}

// Accept decides a sent proposal. The signature stamp is optional: it is
// set only when the acceptance flow supplies it.
func (p *Proposal) Accept(signedBy string, signedAt time.Time) error {
	if p.Status != StatusSent {
		return &StateError{Current: p.Status}
	}

	p.Status = StatusAccepted

	if signedBy != "" {
		p.SignedBy = &signedBy
		p.SignedAt = &signedAt
	}

	return nil
}

// Reject decides a sent proposal.
func (p *Proposal) Reject() error {
	if p.Status != StatusSent {
		return &StateError{Current: p.Status}
	}

	p.Status = StatusRejected

	return nil
}
