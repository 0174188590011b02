package timelog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("time entry not found")

	// ErrAlreadyBilled signals an attempt to re-bill an entry that is
	// already attached to an invoice.
	ErrAlreadyBilled = errors.New("time entry already billed")
)

type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)
	// SetInvoice links an entry to an invoice. It must be idempotent for
	// the same invoice id and must refuse to overwrite a different one.
	SetInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProjectID       uuid.UUID
	Description     string
	Date            time.Time
	DurationSeconds int64
}

type ListFilter struct {
	ProjectID *uuid.UUID
	Unbilled  bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	e := &Entry{
		ProjectID:       params.ProjectID,
		Description:     params.Description,
		Date:            params.Date,
		DurationSeconds: params.DurationSeconds,
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// ListUnbilled returns the project's entries not yet attached to an invoice.
func (s *Service) ListUnbilled(ctx context.Context, projectID uuid.UUID) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, ListFilter{ProjectID: &projectID, Unbilled: true})
}

// MarkBilled attaches an entry to an invoice, permanently.
func (s *Service) MarkBilled(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	return s.repo.SetInvoice(ctx, entryID, invoiceID)
}
