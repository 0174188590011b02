package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/duartefn/solo/internal/expense"
)

// ExpenseLedger is the slice of the expense service the importer writes
// through.
type ExpenseLedger interface {
	List(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error)
	Create(ctx context.Context, params expense.CreateParams) (*expense.Expense, error)
}

type statementParser interface {
	Parse(r io.Reader) ([]expense.CreateParams, error)
}

// Service imports bank statements into the expense ledger. Rows already
// present in the ledger are skipped, so re-uploading the same statement
// is harmless.
type Service struct {
	parser   statementParser
	expenses ExpenseLedger
}

func NewService(expenses ExpenseLedger) *Service {
	return &Service{
		parser:   NewParser(),
		expenses: expenses,
	}
}

// Result summarizes one import.
type Result struct {
	Created []*expense.Expense
	Skipped int
}

// Import parses the statement and creates one expense per debit row not
// already in the ledger. A row is a duplicate when an expense with the
// same date, amount and description exists, which covers both a repeated
// upload and overlapping statement periods.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if len(rows) == 0 {
		return result, nil
	}

	seen, err := s.existingKeys(ctx, rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		key := expenseKey(row.Date, row.AmountCents, row.Description)
		if seen[key] {
			result.Skipped++
			continue
		}

		created, err := s.expenses.Create(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("importing %q: %w", row.Description, err)
		}

		seen[key] = true
		result.Created = append(result.Created, created)
	}

	return result, nil
}

// existingKeys loads the ledger for the statement's date span and
// indexes it for duplicate lookups.
func (s *Service) existingKeys(ctx context.Context, rows []expense.CreateParams) (map[string]bool, error) {
	start, end := rows[0].Date, rows[0].Date

	for _, row := range rows[1:] {
		if row.Date.Before(start) {
			start = row.Date
		}

		if row.Date.After(end) {
			end = row.Date
		}
	}

	existing, err := s.expenses.List(ctx, expense.ListFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("checking for duplicates: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, e := range existing {
		seen[expenseKey(e.Date, e.AmountCents, e.Description)] = true
	}

	return seen, nil
}

func expenseKey(date time.Time, cents int64, description string) string {
	return fmt.Sprintf("%s|%d|%s", date.Format(time.DateOnly), cents, strings.ToLower(strings.TrimSpace(description)))
}
