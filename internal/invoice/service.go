package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/client"
	"github.com/duartefn/solo/internal/money"
	"github.com/duartefn/solo/internal/notify"
	"github.com/duartefn/solo/internal/project"
	"github.com/duartefn/solo/internal/timelog"
)

var (
	ErrNotFound = errors.New("invoice not found")

	// ErrNothingToBill signals a time-billing request for a project with
	// no unbilled entries.
	ErrNothingToBill = errors.New("no unbilled time entries for project")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	SetInvoicePaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error

	// NextSequence advances and returns the persisted per-year invoice
	// counter. Counting rows instead would break as soon as an invoice is
	// deleted or two sessions generate at once.
	NextSequence(ctx context.Context, year int) (int, error)

	// HasGeneratedInvoice reports whether an invoice already exists for
	// the given recurring template and period occurrence.
	HasGeneratedInvoice(ctx context.Context, recurringID uuid.UUID, period time.Time) (bool, error)
}

// Clients resolves client references before an invoice is written.
type Clients interface {
	Get(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

// Projects resolves project references before an invoice is written.
type Projects interface {
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

// TimeSheet is the slice of the time-entry service that time billing needs.
type TimeSheet interface {
	ListUnbilled(ctx context.Context, projectID uuid.UUID) ([]*timelog.Entry, error)
	MarkBilled(ctx context.Context, entryID, invoiceID uuid.UUID) error
}

type Service struct {
	repo      Repository
	clients   Clients
	projects  Projects
	timesheet TimeSheet
	notifier  notify.Notifier

	hourlyRateCents int64
	dueDays         int
}

func NewService(
	repo Repository,
	clients Clients,
	projects Projects,
	timesheet TimeSheet,
	notifier notify.Notifier,
	hourlyRateCents int64,
	dueDays int,
) *Service {
	return &Service{
		repo:            repo,
		clients:         clients,
		projects:        projects,
		timesheet:       timesheet,
		notifier:        notifier,
		hourlyRateCents: hourlyRateCents,
		dueDays:         dueDays,
	}
}

type CreateParams struct {
	ClientID   uuid.UUID
	ProjectID  *uuid.UUID
	Items      []money.Item
	TaxPercent decimal.Decimal
	IssueDate  time.Time
	// Zero DueDate defaults to IssueDate plus the configured payment term.
	DueDate time.Time
}

type ListFilter struct {
	ClientID  *uuid.UUID
	ProjectID *uuid.UUID
	Paid      *bool
}

// Create validates references, recomputes totals from the items, assigns
// the next invoice number and persists the document.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if err := money.ValidateItems(params.Items); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, params.ClientID, params.ProjectID); err != nil {
		return nil, err
	}

	return s.issue(ctx, params, nil, nil)
}

// GeneratedParams describes an invoice materialized by the recurring
// billing scheduler from a template occurrence.
type GeneratedParams struct {
	CreateParams
	RecurringID uuid.UUID
	PeriodDate  time.Time
}

// IssueGenerated persists an invoice spawned by a recurring template.
// Reference checks still apply: a template whose client has been removed
// fails before any write.
func (s *Service) IssueGenerated(ctx context.Context, params GeneratedParams) (*Invoice, error) {
	if err := s.checkReferences(ctx, params.ClientID, params.ProjectID); err != nil {
		return nil, err
	}

	return s.issue(ctx, params.CreateParams, &params.RecurringID, &params.PeriodDate)
}

// HasGenerated reports whether a template occurrence already produced an
// invoice. The scheduler consults this before materializing.
func (s *Service) HasGenerated(ctx context.Context, recurringID uuid.UUID, period time.Time) (bool, error) {
	return s.repo.HasGeneratedInvoice(ctx, recurringID, period)
}

func (s *Service) issue(ctx context.Context, params CreateParams, recurringID *uuid.UUID, periodDate *time.Time) (*Invoice, error) {
	totals := money.Total(params.Items, params.TaxPercent)

	year := params.IssueDate.Year()

	seq, err := s.repo.NextSequence(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("assigning invoice number: %w", err)
	}

	dueDate := params.DueDate
	if dueDate.IsZero() {
		dueDate = params.IssueDate.AddDate(0, 0, s.dueDays)
	}

	inv := &Invoice{
		ClientID:      params.ClientID,
		ProjectID:     params.ProjectID,
		Number:        Number(year, seq),
		IssueDate:     params.IssueDate,
		DueDate:       dueDate,
		Items:         params.Items,
		TaxPercent:    params.TaxPercent,
		SubtotalCents: totals.SubtotalCents,
		TotalCents:    totals.TotalCents,
		RecurringID:   recurringID,
		PeriodDate:    periodDate,
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) checkReferences(ctx context.Context, clientID uuid.UUID, projectID *uuid.UUID) error {
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return err
	}

	if projectID != nil {
		if _, err := s.projects.Get(ctx, *projectID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

// MarkPaid transitions an invoice to paid and emits the paid event. An
// already-paid invoice returns ErrAlreadyPaid and writes nothing.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkPaid(paidAt); err != nil {
		return nil, err
	}

	if err := s.repo.SetInvoicePaid(ctx, id, paidAt); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyInvoicePaid(ctx, notify.InvoicePaid{
			ClientID:      inv.ClientID,
			InvoiceNumber: inv.Number,
			TotalCents:    inv.TotalCents,
		})
	}

	return inv, nil
}

// BillResult reports the outcome of billing a project's logged time.
// Failed lists entries whose invoice link could not be written even after
// retries; the invoice exists and a later BillTimeEntries run will not
// double-bill them because MarkBilled is idempotent.
type BillResult struct {
	Invoice *Invoice
	Billed  []uuid.UUID
	Failed  []uuid.UUID
}

const markBilledAttempts = 3

// BillTimeEntries creates one invoice covering all of the project's
// unbilled time at the configured hourly rate, then links each entry to
// it. The invoice insert and the entry updates are separate round-trips;
// the updates are retried so time worked is never silently detached from
// the invoice it was billed on.
func (s *Service) BillTimeEntries(ctx context.Context, projectID uuid.UUID, taxPercent decimal.Decimal, asOf time.Time) (*BillResult, error) {
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entries, err := s.timesheet.ListUnbilled(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing unbilled time: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrNothingToBill
	}

	var totalSeconds int64
	for _, e := range entries {
		totalSeconds += e.DurationSeconds
	}

	hours := decimal.NewFromInt(totalSeconds).DivRound(decimal.NewFromInt(3600), 2)

	item := money.Item{
		Description:    fmt.Sprintf("Professional services for %s (%s h)", proj.Name, hours.String()),
		Quantity:       hours,
		UnitPriceCents: s.hourlyRateCents,
	}

	inv, err := s.issue(ctx, CreateParams{
		ClientID:   proj.ClientID,
		ProjectID:  &projectID,
		Items:      []money.Item{item},
		TaxPercent: taxPercent,
		IssueDate:  asOf,
	}, nil, nil)
	if err != nil {
		return nil, err
	}

	result := &BillResult{Invoice: inv}

	for _, e := range entries {
		if err := s.markBilledRetry(ctx, e.ID, inv.ID); err != nil {
			slog.Error("failed to link time entry to invoice",
				"entry_id", e.ID, "invoice_id", inv.ID, "error", err)

			result.Failed = append(result.Failed, e.ID)

			continue
		}

		result.Billed = append(result.Billed, e.ID)
	}

	return result, nil
}

func (s *Service) markBilledRetry(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	var err error

	for attempt := 0; attempt < markBilledAttempts; attempt++ {
		if err = s.timesheet.MarkBilled(ctx, entryID, invoiceID); err == nil {
			return nil
		}

		if errors.Is(err, timelog.ErrAlreadyBilled) || errors.Is(err, timelog.ErrNotFound) {
			return err
		}
	}

	return err
}
