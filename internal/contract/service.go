package contract

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("contract not found")

type Repository interface {
	CreateContract(ctx context.Context, c *Contract) error
	GetContract(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListContracts(ctx context.Context) ([]*Contract, error)
	UpdateContract(ctx context.Context, c *Contract) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID  uuid.UUID
	ProjectID uuid.UUID
	Content   string
	ExpiresAt *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Contract, error) {
	c := &Contract{
		ClientID:  params.ClientID,
		ProjectID: params.ProjectID,
		Content:   params.Content,
		ExpiresAt: params.ExpiresAt,
		Status:    StatusDraft,
	}
	if err := s.repo.CreateContract(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.repo.GetContract(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Contract, error) {
	return s.repo.ListContracts(ctx)
}

func (s *Service) Send(ctx context.Context, id uuid.UUID) (*Contract, error) {
	return s.transition(ctx, id, (*Contract).Send)
}

// Sign completes a sent contract. Signing twice returns the guard error
// and nothing is written.
func (s *Service) Sign(ctx context.Context, id uuid.UUID, signedBy, signature string, signedAt time.Time) (*Contract, error) {
	return s.transition(ctx, id, func(c *Contract) error {
		return c.Sign(signedBy, signature, signedAt)
	})
}

// SetExpiry sets the expiration date of a draft.
func (s *Service) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*Contract, error) {
	return s.transition(ctx, id, func(c *Contract) error {
		return c.SetExpiry(expiresAt)
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*Contract) error) (*Contract, error) {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(c); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateContract(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}
