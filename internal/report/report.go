// Package report derives profitability and cash-flow figures from the
// ledger. Everything here is a pure aggregation: the inputs are read as
// they are and never mutated, and empty inputs yield zero-valued rows.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/invoice"
	"github.com/duartefn/solo/internal/project"
	"github.com/duartefn/solo/internal/recurring"
	"github.com/duartefn/solo/internal/timelog"
)

// ProjectProfit is the profitability view of one project. Income counts
// the subtotal (pre-tax) of paid invoices only; collected VAT is not
// revenue. Logged time is costed at the owner's hourly rate whether or
// not it was billed.
type ProjectProfit struct {
	ProjectID     uuid.UUID
	ProjectName   string
	IncomeCents   int64
	ExpenseCents  int64
	TimeCostCents int64
	NetCents      int64
	// MarginPercent is net over income; zero when there is no income.
	MarginPercent float64
	TotalHours    float64
	// EffectiveHourlyRateCents is net over hours worked; zero when no
	// time was logged.
	EffectiveHourlyRateCents int64
}

var secondsPerHour = decimal.NewFromInt(3600)

// Profitability computes one row per project. Invoices, expenses and
// entries not assigned to any project are ignored here; Portfolio covers
// them.
func Profitability(
	projects []*project.Project,
	invoices []*invoice.Invoice,
	expenses []*expense.Expense,
	entries []*timelog.Entry,
	hourlyRateCents int64,
) []ProjectProfit {
	rows := make([]ProjectProfit, 0, len(projects))

	for _, p := range projects {
		row := ProjectProfit{ProjectID: p.ID, ProjectName: p.Name}

		for _, inv := range invoices {
			if inv.Paid && inv.ProjectID != nil && *inv.ProjectID == p.ID {
				row.IncomeCents += inv.SubtotalCents
			}
		}

		for _, e := range expenses {
			if e.ProjectID != nil && *e.ProjectID == p.ID {
				row.ExpenseCents += e.AmountCents
			}
		}

		var seconds int64

		for _, t := range entries {
			if t.ProjectID == p.ID {
				seconds += t.DurationSeconds
			}
		}

		finishProfit(&row, seconds, hourlyRateCents)

		rows = append(rows, row)
	}

	return rows
}

// Portfolio is the same computation over the whole ledger, unassigned
// rows included.
type PortfolioProfit struct {
	IncomeCents              int64
	ExpenseCents             int64
	TimeCostCents            int64
	NetCents                 int64
	MarginPercent            float64
	TotalHours               float64
	EffectiveHourlyRateCents int64
}

func Portfolio(
	invoices []*invoice.Invoice,
	expenses []*expense.Expense,
	entries []*timelog.Entry,
	hourlyRateCents int64,
) PortfolioProfit {
	var row ProjectProfit

	for _, inv := range invoices {
		if inv.Paid {
			row.IncomeCents += inv.SubtotalCents
		}
	}

	for _, e := range expenses {
		row.ExpenseCents += e.AmountCents
	}

	var seconds int64
	for _, t := range entries {
		seconds += t.DurationSeconds
	}

	finishProfit(&row, seconds, hourlyRateCents)

	return PortfolioProfit{
		IncomeCents:              row.IncomeCents,
		ExpenseCents:             row.ExpenseCents,
		TimeCostCents:            row.TimeCostCents,
		NetCents:                 row.NetCents,
		MarginPercent:            row.MarginPercent,
		TotalHours:               row.TotalHours,
		EffectiveHourlyRateCents: row.EffectiveHourlyRateCents,
	}
}

func finishProfit(row *ProjectProfit, seconds, hourlyRateCents int64) {
	hours := decimal.NewFromInt(seconds).Div(secondsPerHour)

	row.TotalHours, _ = hours.Float64()
	row.TimeCostCents = hours.Mul(decimal.NewFromInt(hourlyRateCents)).Round(0).IntPart()
	row.NetCents = row.IncomeCents - row.ExpenseCents - row.TimeCostCents

	if row.IncomeCents != 0 {
		row.MarginPercent, _ = decimal.NewFromInt(row.NetCents).
			Div(decimal.NewFromInt(row.IncomeCents)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}

	if hours.Sign() != 0 {
		row.EffectiveHourlyRateCents = decimal.NewFromInt(row.NetCents).
			DivRound(hours, 0).
			IntPart()
	}
}

// MonthFlow is one month of the cash-flow forecast.
type MonthFlow struct {
	Year         int
	Month        time.Month
	IncomeCents  int64
	ExpenseCents int64
	NetCents     int64
}

// ForecastMonths is how far ahead the cash-flow projection looks.
const ForecastMonths = 6

// Forecast projects the next months starting from the month of `from`:
// projected income is the full total of unpaid invoices due in each
// month, projected expense is every recurring expense template active in
// it. An unpaid invoice contributes to exactly the month its due date
// falls in.
func Forecast(
	from time.Time,
	months int,
	invoices []*invoice.Invoice,
	templates []*recurring.ExpenseTemplate,
) []MonthFlow {
	flows := make([]MonthFlow, 0, months)

	year, month, _ := from.Date()

	for i := 0; i < months; i++ {
		flow := MonthFlow{Year: year, Month: month}

		for _, inv := range invoices {
			if inv.Paid {
				continue
			}

			dueYear, dueMonth, _ := inv.DueDate.Date()
			if dueYear == year && dueMonth == month {
				flow.IncomeCents += inv.TotalCents
			}
		}

		for _, t := range templates {
			if t.ActiveIn(year, month) {
				flow.ExpenseCents += t.AmountCents
			}
		}

		flow.NetCents = flow.IncomeCents - flow.ExpenseCents
		flows = append(flows, flow)

		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	return flows
}
