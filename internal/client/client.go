package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of the account owner.
type Client struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	TaxID     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
