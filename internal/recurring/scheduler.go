package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/invoice"
)

// InvoiceIssuer is the slice of the invoice service the scheduler needs:
// the per-period provenance check and the materialization itself.
type InvoiceIssuer interface {
	HasGenerated(ctx context.Context, recurringID uuid.UUID, period time.Time) (bool, error)
	IssueGenerated(ctx context.Context, params invoice.GeneratedParams) (*invoice.Invoice, error)
}

// ExpenseWriter is the slice of the expense service the scheduler needs.
type ExpenseWriter interface {
	HasGenerated(ctx context.Context, recurringID uuid.UUID, date time.Time) (bool, error)
	Create(ctx context.Context, params expense.CreateParams) (*expense.Expense, error)
}

// Scheduler walks every recurring template on each run and materializes
// a concrete document for each occurrence that has come due. Creating
// the document and advancing the template are two separate writes with
// no transaction across them; the per-period generation check is what
// keeps a crash between the two from producing duplicates on the next
// run.
type Scheduler struct {
	mu sync.Mutex

	repo     Repository
	invoices InvoiceIssuer
	expenses ExpenseWriter
	dueDays  int
}

func NewScheduler(repo Repository, invoices InvoiceIssuer, expenses ExpenseWriter, dueDays int) *Scheduler {
	return &Scheduler{
		repo:     repo,
		invoices: invoices,
		expenses: expenses,
		dueDays:  dueDays,
	}
}

// RunResult summarizes one scheduler pass. Errors are per-template:
// one broken template never stops the others from billing.
type RunResult struct {
	InvoicesCreated int
	ExpensesCreated int
	Errors          []error
}

const advanceAttempts = 3

// Run materializes every due occurrence up to and including today. The
// mutex serializes concurrent runs from the same process; runs from
// another session are defused by the per-period generation checks.
func (s *Scheduler) Run(ctx context.Context, today time.Time) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today = midnight(today)
	result := &RunResult{}

	invoiceTemplates, err := s.repo.ListInvoiceTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recurring invoices: %w", err)
	}

	for _, tpl := range invoiceTemplates {
		s.runInvoiceTemplate(ctx, tpl, today, result)
	}

	expenseTemplates, err := s.repo.ListExpenseTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recurring expenses: %w", err)
	}

	for _, tpl := range expenseTemplates {
		s.runExpenseTemplate(ctx, tpl, today, result)
	}

	return result, nil
}

func (s *Scheduler) runInvoiceTemplate(ctx context.Context, tpl *InvoiceTemplate, today time.Time, result *RunResult) {
	next := midnight(tpl.NextDueDate)

	// A template overdue several periods catches up one document per
	// elapsed occurrence.
	for !next.After(today) {
		generated, err := s.invoices.HasGenerated(ctx, tpl.ID, next)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recurring invoice %s: %w", tpl.ID, err))
			return
		}

		if !generated {
			_, err := s.invoices.IssueGenerated(ctx, invoice.GeneratedParams{
				CreateParams: invoice.CreateParams{
					ClientID:   tpl.ClientID,
					ProjectID:  tpl.ProjectID,
					Items:      tpl.Items,
					TaxPercent: tpl.TaxPercent,
					IssueDate:  today,
					DueDate:    today.AddDate(0, 0, s.dueDays),
				},
				RecurringID: tpl.ID,
				PeriodDate:  next,
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("recurring invoice %s: %w", tpl.ID, err))
				return
			}

			result.InvoicesCreated++
		}

		next = NextOccurrence(next, tpl.Frequency)
	}

	if !next.Equal(midnight(tpl.NextDueDate)) {
		if err := s.advanceRetry(ctx, func() error {
			return s.repo.SetInvoiceTemplateNextDue(ctx, tpl.ID, next)
		}); err != nil {
			// The invoice exists but the template still points at the old
			// period; the generation check absorbs that on the next run.
			result.Errors = append(result.Errors, fmt.Errorf("advancing recurring invoice %s: %w", tpl.ID, err))
		}
	}
}

func (s *Scheduler) runExpenseTemplate(ctx context.Context, tpl *ExpenseTemplate, today time.Time, result *RunResult) {
	next := midnight(tpl.NextDueDate)

	for !next.After(today) {
		generated, err := s.expenses.HasGenerated(ctx, tpl.ID, next)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recurring expense %s: %w", tpl.ID, err))
			return
		}

		if !generated {
			_, err := s.expenses.Create(ctx, expense.CreateParams{
				Description: tpl.Description,
				AmountCents: tpl.AmountCents,
				Category:    tpl.Category,
				Date:        next,
				RecurringID: &tpl.ID,
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("recurring expense %s: %w", tpl.ID, err))
				return
			}

			result.ExpensesCreated++
		}

		next = NextOccurrence(next, tpl.Frequency)
	}

	if !next.Equal(midnight(tpl.NextDueDate)) {
		if err := s.advanceRetry(ctx, func() error {
			return s.repo.SetExpenseTemplateNextDue(ctx, tpl.ID, next)
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("advancing recurring expense %s: %w", tpl.ID, err))
		}
	}
}

func (s *Scheduler) advanceRetry(ctx context.Context, update func() error) error {
	var err error

	for attempt := 0; attempt < advanceAttempts; attempt++ {
		if err = update(); err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return err
		}

		slog.Warn("retrying template advance", "attempt", attempt+1, "error", err)
	}

	return err
}

func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
