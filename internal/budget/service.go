package budget

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/money"
)

var ErrNotFound = errors.New("budget not found")

type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	ListBudgets(ctx context.Context) ([]*Budget, error)
	UpdateBudgetStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID    uuid.UUID
	Description string
	Items       []money.Item
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	if err := money.ValidateItems(params.Items); err != nil {
		return nil, err
	}

	b := &Budget{
		ClientID:    params.ClientID,
		Description: params.Description,
		Items:       params.Items,
		AmountCents: money.SubtotalCents(params.Items),
		Status:      StatusPending,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx)
}

// Accept decides a pending budget. A decided budget returns the guard
// error unchanged and nothing is written.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.transition(ctx, id, (*Budget).Accept)
}

// Reject decides a pending budget.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Budget, error) {
	return s.transition(ctx, id, (*Budget).Reject)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*Budget) error) (*Budget, error) {
	b, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(b); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBudgetStatus(ctx, id, b.Status); err != nil {
		return nil, err
	}

	return b, nil
}
