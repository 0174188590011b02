package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/invoice"
	"github.com/duartefn/solo/internal/project"
	"github.com/duartefn/solo/internal/recurring"
	"github.com/duartefn/solo/internal/report"
	"github.com/duartefn/solo/internal/timelog"
)

const hourlyRateCents = 5000

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProfitability(t *testing.T) {
	projectID := uuid.New()
	projects := []*project.Project{{ID: projectID, Name: "Website redesign"}}

	t.Run("WorkedExample", func(t *testing.T) {
		// 1000.00 income, 200.00 expenses, 10h at 50.00/h of time cost.
		invoices := []*invoice.Invoice{
			{ProjectID: &projectID, Paid: true, SubtotalCents: 100_000, TotalCents: 121_000},
		}
		expenses := []*expense.Expense{
			{ProjectID: &projectID, AmountCents: 20_000},
		}
		entries := []*timelog.Entry{
			{ProjectID: projectID, DurationSeconds: 6 * 3600},
			{ProjectID: projectID, DurationSeconds: 4 * 3600},
		}

		rows := report.Profitability(projects, invoices, expenses, entries, hourlyRateCents)
		require.Len(t, rows, 1)

		row := rows[0]
		assert.Equal(t, "Website redesign", row.ProjectName)
		assert.Equal(t, int64(100_000), row.IncomeCents)
		assert.Equal(t, int64(20_000), row.ExpenseCents)
		assert.Equal(t, int64(50_000), row.TimeCostCents)
		assert.Equal(t, int64(30_000), row.NetCents)
		assert.Equal(t, 30.0, row.MarginPercent)
		assert.Equal(t, 10.0, row.TotalHours)
		assert.Equal(t, int64(3_000), row.EffectiveHourlyRateCents)
	})

	t.Run("UnpaidInvoicesAreNotIncome", func(t *testing.T) {
		invoices := []*invoice.Invoice{
			{ProjectID: &projectID, Paid: false, SubtotalCents: 100_000},
		}

		rows := report.Profitability(projects, invoices, nil, nil, hourlyRateCents)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].IncomeCents)
		assert.Zero(t, rows[0].MarginPercent)
	})

	t.Run("UnassignedRecordsStayOffProjectRows", func(t *testing.T) {
		invoices := []*invoice.Invoice{
			{ProjectID: nil, Paid: true, SubtotalCents: 40_000},
		}
		expenses := []*expense.Expense{
			{ProjectID: nil, AmountCents: 5_000},
		}

		rows := report.Profitability(projects, invoices, expenses, nil, hourlyRateCents)
		require.Len(t, rows, 1)
		assert.Zero(t, rows[0].IncomeCents)
		assert.Zero(t, rows[0].ExpenseCents)

		total := report.Portfolio(invoices, expenses, nil, hourlyRateCents)
		assert.Equal(t, int64(40_000), total.IncomeCents)
		assert.Equal(t, int64(5_000), total.ExpenseCents)
		assert.Equal(t, int64(35_000), total.NetCents)
	})

	t.Run("EmptyLedgerYieldsZeros", func(t *testing.T) {
		rows := report.Profitability(projects, nil, nil, nil, hourlyRateCents)
		require.Len(t, rows, 1)
		assert.Equal(t, report.ProjectProfit{ProjectID: projectID, ProjectName: "Website redesign"}, rows[0])

		assert.Zero(t, report.Portfolio(nil, nil, nil, hourlyRateCents))
	})

	t.Run("ExpenseOnlyProjectHasNegativeNet", func(t *testing.T) {
		expenses := []*expense.Expense{
			{ProjectID: &projectID, AmountCents: 12_500},
		}

		rows := report.Profitability(projects, nil, expenses, nil, hourlyRateCents)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(-12_500), rows[0].NetCents)
		// No income, so the margin stays zero rather than dividing by it.
		assert.Zero(t, rows[0].MarginPercent)
	})
}

func TestForecast(t *testing.T) {
	from := date(2026, time.September, 1)

	unpaidOctober := &invoice.Invoice{
		Paid:       false,
		DueDate:    date(2026, time.October, 15),
		TotalCents: 121_000,
	}
	paidOctober := &invoice.Invoice{
		Paid:       true,
		DueDate:    date(2026, time.October, 20),
		TotalCents: 99_000,
	}
	unpaidNextJanuary := &invoice.Invoice{
		Paid:       false,
		DueDate:    date(2027, time.January, 3),
		TotalCents: 50_000,
	}

	rent := &recurring.ExpenseTemplate{
		Frequency:   recurring.FrequencyMonthly,
		StartDate:   date(2025, time.January, 1),
		AmountCents: 80_000,
	}
	insurance := &recurring.ExpenseTemplate{
		Frequency:   recurring.FrequencyYearly,
		StartDate:   date(2025, time.November, 5),
		AmountCents: 30_000,
	}

	flows := report.Forecast(from, report.ForecastMonths,
		[]*invoice.Invoice{unpaidOctober, paidOctober, unpaidNextJanuary},
		[]*recurring.ExpenseTemplate{rent, insurance},
	)
	require.Len(t, flows, report.ForecastMonths)

	// September 2026 through February 2027.
	assert.Equal(t, time.September, flows[0].Month)
	assert.Equal(t, 2026, flows[0].Year)
	assert.Equal(t, time.January, flows[4].Month)
	assert.Equal(t, 2027, flows[4].Year)

	// The unpaid invoice lands in October only; the paid one nowhere.
	assert.Zero(t, flows[0].IncomeCents)
	assert.Equal(t, int64(121_000), flows[1].IncomeCents)
	assert.Zero(t, flows[2].IncomeCents)
	assert.Equal(t, int64(50_000), flows[4].IncomeCents)

	// Rent recurs every month; the insurance premium only in November.
	assert.Equal(t, int64(80_000), flows[0].ExpenseCents)
	assert.Equal(t, int64(110_000), flows[2].ExpenseCents)
	assert.Equal(t, int64(80_000), flows[5].ExpenseCents)

	assert.Equal(t, int64(-80_000), flows[0].NetCents)
	assert.Equal(t, int64(41_000), flows[1].NetCents)
}

func TestService_Profitability(t *testing.T) {
	ctrl := gomock.NewController(t)
	projectID := uuid.New()

	projects := report.NewMockProjectSource(ctrl)
	invoices := report.NewMockInvoiceSource(ctrl)
	expenses := report.NewMockExpenseSource(ctrl)
	entries := report.NewMockTimeSource(ctrl)
	templates := report.NewMockTemplateSource(ctrl)

	projects.EXPECT().List(gomock.Any()).Return([]*project.Project{{ID: projectID, Name: "Retainer"}}, nil)
	invoices.EXPECT().List(gomock.Any(), invoice.ListFilter{}).Return([]*invoice.Invoice{
		{ProjectID: &projectID, Paid: true, SubtotalCents: 60_000},
	}, nil)
	expenses.EXPECT().List(gomock.Any(), expense.ListFilter{}).Return(nil, nil)
	entries.EXPECT().List(gomock.Any(), timelog.ListFilter{}).Return([]*timelog.Entry{
		{ProjectID: projectID, DurationSeconds: 2 * 3600},
	}, nil)

	svc := report.NewService(invoices, expenses, entries, projects, templates, hourlyRateCents)

	got, err := svc.Profitability(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)

	assert.Equal(t, int64(60_000), got.Projects[0].IncomeCents)
	assert.Equal(t, int64(50_000), got.Projects[0].NetCents)
	assert.Equal(t, int64(50_000), got.Portfolio.NetCents)
}

func TestService_Forecast(t *testing.T) {
	ctrl := gomock.NewController(t)

	projects := report.NewMockProjectSource(ctrl)
	invoices := report.NewMockInvoiceSource(ctrl)
	expenses := report.NewMockExpenseSource(ctrl)
	entries := report.NewMockTimeSource(ctrl)
	templates := report.NewMockTemplateSource(ctrl)

	unpaid := false
	invoices.EXPECT().List(gomock.Any(), invoice.ListFilter{Paid: &unpaid}).Return(nil, nil)
	templates.EXPECT().ListExpenseTemplates(gomock.Any()).Return(nil, nil)

	svc := report.NewService(invoices, expenses, entries, projects, templates, hourlyRateCents)

	flows, err := svc.Forecast(context.Background(), date(2026, time.September, 1))
	require.NoError(t, err)
	assert.Len(t, flows, report.ForecastMonths)
}
