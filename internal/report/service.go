package report

import (
	"context"
	"fmt"
	"time"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/invoice"
	"github.com/duartefn/solo/internal/project"
	"github.com/duartefn/solo/internal/recurring"
	"github.com/duartefn/solo/internal/timelog"
)

//go:generate mockgen -source=service.go -destination=source_mock.go -package=report

type InvoiceSource interface {
	List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type ExpenseSource interface {
	List(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error)
}

type TimeSource interface {
	List(ctx context.Context, filter timelog.ListFilter) ([]*timelog.Entry, error)
}

type ProjectSource interface {
	List(ctx context.Context) ([]*project.Project, error)
}

type TemplateSource interface {
	ListExpenseTemplates(ctx context.Context) ([]*recurring.ExpenseTemplate, error)
}

// Service assembles reports from the other domains. It only reads; the
// actual number crunching lives in the pure functions of this package.
type Service struct {
	invoices        InvoiceSource
	expenses        ExpenseSource
	entries         TimeSource
	projects        ProjectSource
	templates       TemplateSource
	hourlyRateCents int64
}

func NewService(
	invoices InvoiceSource,
	expenses ExpenseSource,
	entries TimeSource,
	projects ProjectSource,
	templates TemplateSource,
	hourlyRateCents int64,
) *Service {
	return &Service{
		invoices:        invoices,
		expenses:        expenses,
		entries:         entries,
		projects:        projects,
		templates:       templates,
		hourlyRateCents: hourlyRateCents,
	}
}

// ProfitabilityReport bundles the per-project rows with the portfolio
// totals so one fetch serves both views.
type ProfitabilityReport struct {
	Projects  []ProjectProfit
	Portfolio PortfolioProfit
}

func (s *Service) Profitability(ctx context.Context) (*ProfitabilityReport, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	invoices, err := s.invoices.List(ctx, invoice.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	expenses, err := s.expenses.List(ctx, expense.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	entries, err := s.entries.List(ctx, timelog.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}

	return &ProfitabilityReport{
		Projects:  Profitability(projects, invoices, expenses, entries, s.hourlyRateCents),
		Portfolio: Portfolio(invoices, expenses, entries, s.hourlyRateCents),
	}, nil
}

func (s *Service) Forecast(ctx context.Context, from time.Time) ([]MonthFlow, error) {
	unpaid := false
	invoices, err := s.invoices.List(ctx, invoice.ListFilter{Paid: &unpaid})
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	templates, err := s.templates.ListExpenseTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing recurring expenses: %w", err)
	}

	return Forecast(from, ForecastMonths, invoices, templates), nil
}
