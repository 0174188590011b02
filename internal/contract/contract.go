package contract

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a contract.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusSent   Status = "sent"
	StatusSigned Status = "signed"
)

// Contract is an agreement covering a project. Signing stamps who signed,
// when, and an opaque signature payload produced by the signing surface.
type Contract struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	ProjectID uuid.UUID
	Content   string
	Status    Status
	ExpiresAt *time.Time
	SignedBy  *string
	SignedAt  *time.Time
	Signature *string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// StateError is the guarded-transition failure; signing may be driven
// from a client-facing page and must never double-apply.
type StateError struct {
	Current Status
}

func (e *StateError) Error() string {
	if e.Current == StatusDraft {
		return "contract not yet sent"
	}

	return "contract already " + string(e.Current)
}

// Send moves a draft to sent. After that, the expiration date is frozen.
func (c *Contract) Send() error {
	if c.Status != StatusDraft {
		return &StateError{Current: c.Status}
	}

	c.Status = StatusSent

	return nil
}

// Sign completes a sent contract.
func (c *Contract) Sign(signedBy, signature string, signedAt time.Time) error {
	if c.Status != StatusSent {
		return &StateError{Current: c.Status}
	}

	c.Status = StatusSigned
	c.SignedBy = &signedBy
	c.SignedAt = &signedAt
	c.Signature = &signature

	return nil
}

// SetExpiry sets the expiration date. Only drafts can be changed.
func (c *Contract) SetExpiry(expiresAt time.Time) error {
	if c.Status != StatusDraft {
		return &StateError{Current: c.Status}
	}

	c.ExpiresAt = &expiresAt

	return nil
}
