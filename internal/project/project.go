package project

import (
	"time"

	"github.com/google/uuid"
)

// Project groups invoices, expenses and logged time for one engagement.
type Project struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Name      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
