package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/money"
)

var ErrNotFound = errors.New("recurring template not found")

type Repository interface {
	CreateInvoiceTemplate(ctx context.Context, t *InvoiceTemplate) error
	GetInvoiceTemplate(ctx context.Context, id uuid.UUID) (*InvoiceTemplate, error)
	ListInvoiceTemplates(ctx context.Context) ([]*InvoiceTemplate, error)
	SetInvoiceTemplateNextDue(ctx context.Context, id uuid.UUID, next time.Time) error
	DeleteInvoiceTemplate(ctx context.Context, id uuid.UUID) error

	CreateExpenseTemplate(ctx context.Context, t *ExpenseTemplate) error
	GetExpenseTemplate(ctx context.Context, id uuid.UUID) (*ExpenseTemplate, error)
	ListExpenseTemplates(ctx context.Context) ([]*ExpenseTemplate, error)
	SetExpenseTemplateNextDue(ctx context.Context, id uuid.UUID, next time.Time) error
	DeleteExpenseTemplate(ctx context.Context, id uuid.UUID) error
}

// Service manages the templates themselves; materialization is the
// Scheduler's job.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type InvoiceTemplateParams struct {
	ClientID    uuid.UUID
	ProjectID   *uuid.UUID
	Description string
	Items       []money.Item
	TaxPercent  decimal.Decimal
	Frequency   Frequency
	StartDate   time.Time
}

func (s *Service) CreateInvoiceTemplate(ctx context.Context, params InvoiceTemplateParams) (*InvoiceTemplate, error) {
	if err := money.ValidateItems(params.Items); err != nil {
		return nil, err
	}

	t := &InvoiceTemplate{
		ClientID:    params.ClientID,
		ProjectID:   params.ProjectID,
		Description: params.Description,
		Items:       params.Items,
		TaxPercent:  params.TaxPercent,
		Frequency:   params.Frequency,
		StartDate:   params.StartDate,
		// The first occurrence is the start date itself.
		NextDueDate: params.StartDate,
	}
	if err := s.repo.CreateInvoiceTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

type ExpenseTemplateParams struct {
	Description string
	AmountCents int64
	Category    string
	Frequency   Frequency
	StartDate   time.Time
}

func (s *Service) CreateExpenseTemplate(ctx context.Context, params ExpenseTemplateParams) (*ExpenseTemplate, error) {
	t := &ExpenseTemplate{
		Description: params.Description,
		AmountCents: params.AmountCents,
		Category:    params.Category,
		Frequency:   params.Frequency,
		StartDate:   params.StartDate,
		NextDueDate: params.StartDate,
	}
	if err := s.repo.CreateExpenseTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) ListInvoiceTemplates(ctx context.Context) ([]*InvoiceTemplate, error) {
	return s.repo.ListInvoiceTemplates(ctx)
}

func (s *Service) ListExpenseTemplates(ctx context.Context) ([]*ExpenseTemplate, error) {
	return s.repo.ListExpenseTemplates(ctx)
}

func (s *Service) DeleteInvoiceTemplate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInvoiceTemplate(ctx, id)
}

func (s *Service) DeleteExpenseTemplate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteExpenseTemplate(ctx, id)
}
