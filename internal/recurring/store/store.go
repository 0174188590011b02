package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/recurring"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceTemplateColumns = `id, client_id, project_id, description, items, tax_percent, frequency, start_date, next_due_date, created_at`

func scanInvoiceTemplate(s scanner) (*recurring.InvoiceTemplate, error) {
	var t recurring.InvoiceTemplate

	var (
		items   []byte
		freqStr string
	)

	if err := s.Scan(
		&t.ID, &t.ClientID, &t.ProjectID, &t.Description, &items, &t.TaxPercent,
		&freqStr, &t.StartDate, &t.NextDueDate, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("decoding template items: %w", err)
	}

	t.Frequency = recurring.Frequency(freqStr)

	return &t, nil
}

func (s *Store) CreateInvoiceTemplate(ctx context.Context, t *recurring.InvoiceTemplate) error {
	items, err := json.Marshal(t.Items)
	if err != nil {
		return fmt.Errorf("encoding template items: %w", err)
	}

	query := `
		INSERT INTO recurring_invoices (client_id, project_id, description, items, tax_percent, frequency, start_date, next_due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		t.ClientID, t.ProjectID, t.Description, items, t.TaxPercent,
		t.Frequency, t.StartDate, t.NextDueDate,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating recurring invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoiceTemplate(ctx context.Context, id uuid.UUID) (*recurring.InvoiceTemplate, error) {
	query := `SELECT ` + selectInvoiceTemplateColumns + ` FROM recurring_invoices WHERE id = $1`

	t, err := scanInvoiceTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recurring.ErrNotFound
		}

		return nil, fmt.Errorf("getting recurring invoice: %w", err)
	}

	return t, nil
}

func (s *Store) ListInvoiceTemplates(ctx context.Context) ([]*recurring.InvoiceTemplate, error) {
	query := `SELECT ` + selectInvoiceTemplateColumns + ` FROM recurring_invoices ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing recurring invoices: %w", err)
	}
	defer rows.Close()

	var templates []*recurring.InvoiceTemplate

	for rows.Next() {
		t, err := scanInvoiceTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring invoice: %w", err)
		}

		templates = append(templates, t)
	}

	return templates, rows.Err()
}

func (s *Store) SetInvoiceTemplateNextDue(ctx context.Context, id uuid.UUID, next time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurring_invoices SET next_due_date = $2 WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("advancing recurring invoice: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteInvoiceTemplate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting recurring invoice: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}

const selectExpenseTemplateColumns = `id, description, amount_cents, category, frequency, start_date, next_due_date, created_at`

func scanExpenseTemplate(s scanner) (*recurring.ExpenseTemplate, error) {
	var t recurring.ExpenseTemplate

	var (
		category sql.NullString
		freqStr  string
	)

	if err := s.Scan(
		&t.ID, &t.Description, &t.AmountCents, &category, &freqStr,
		&t.StartDate, &t.NextDueDate, &t.CreatedAt,
	); err != nil {
		return nil, err
	}

	t.Category = category.String
	t.Frequency = recurring.Frequency(freqStr)

	return &t, nil
}

func (s *Store) CreateExpenseTemplate(ctx context.Context, t *recurring.ExpenseTemplate) error {
	query := `
		INSERT INTO recurring_expenses (description, amount_cents, category, frequency, start_date, next_due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		t.Description, t.AmountCents, t.Category, t.Frequency, t.StartDate, t.NextDueDate,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating recurring expense: %w", err)
	}

	return nil
}

func (s *Store) GetExpenseTemplate(ctx context.Context, id uuid.UUID) (*recurring.ExpenseTemplate, error) {
	query := `SELECT ` + selectExpenseTemplateColumns + ` FROM recurring_expenses WHERE id = $1`

	t, err := scanExpenseTemplate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recurring.ErrNotFound
		}

		return nil, fmt.Errorf("getting recurring expense: %w", err)
	}

	return t, nil
}

func (s *Store) ListExpenseTemplates(ctx context.Context) ([]*recurring.ExpenseTemplate, error) {
	query := `SELECT ` + selectExpenseTemplateColumns + ` FROM recurring_expenses ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing recurring expenses: %w", err)
	}
	defer rows.Close()

	var templates []*recurring.ExpenseTemplate

	for rows.Next() {
		t, err := scanExpenseTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recurring expense: %w", err)
		}

		templates = append(templates, t)
	}

	return templates, rows.Err()
}

func (s *Store) SetExpenseTemplateNextDue(ctx context.Context, id uuid.UUID, next time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurring_expenses SET next_due_date = $2 WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("advancing recurring expense: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteExpenseTemplate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting recurring expense: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}
