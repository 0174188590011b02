package expense

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("expense not found")

type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListExpenses(ctx context.Context, filter ListFilter) ([]*Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	// HasGeneratedExpense reports whether an expense already exists for
	// the given recurring template and occurrence date.
	HasGeneratedExpense(ctx context.Context, recurringID uuid.UUID, date time.Time) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProjectID   *uuid.UUID
	Description string
	AmountCents int64
	TaxPercent  decimal.Decimal
	Date        time.Time
	Category    string
	RecurringID *uuid.UUID
}

type ListFilter struct {
	ProjectID *uuid.UUID
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Expense, error) {
	e := &Expense{
		ProjectID:   params.ProjectID,
		Description: params.Description,
		AmountCents: params.AmountCents,
		TaxPercent:  params.TaxPercent,
		Date:        params.Date,
		Category:    params.Category,
		RecurringID: params.RecurringID,
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteExpense(ctx, id)
}

// HasGenerated reports whether a recurring template occurrence already
// produced an expense. The billing scheduler consults this before
// materializing.
func (s *Service) HasGenerated(ctx context.Context, recurringID uuid.UUID, date time.Time) (bool, error) {
	return s.repo.HasGeneratedExpense(ctx, recurringID, date)
}
