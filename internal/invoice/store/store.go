package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/invoice"
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

const selectInvoiceColumns = `
	id, client_id, project_id, invoice_number, issue_date, due_date, items,
	tax_percent, subtotal_cents, total_cents, paid, payment_date,
	recurring_id, period_date, created_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var items []byte

	if err := s.Scan(
		&inv.ID, &inv.ClientID, &inv.ProjectID, &inv.Number, &inv.IssueDate, &inv.DueDate, &items,
		&inv.TaxPercent, &inv.SubtotalCents, &inv.TotalCents, &inv.Paid, &inv.PaymentDate,
		&inv.RecurringID, &inv.PeriodDate, &inv.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decoding invoice items: %w", err)
	}

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding invoice items: %w", err)
	}

	query := `
		INSERT INTO invoices (client_id, project_id, invoice_number, issue_date, due_date, items,
			tax_percent, subtotal_cents, total_cents, paid, payment_date, recurring_id, period_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.ClientID, inv.ProjectID, inv.Number, inv.IssueDate, inv.DueDate, items,
		inv.TaxPercent, inv.SubtotalCents, inv.TotalCents, inv.Paid, inv.PaymentDate,
		inv.RecurringID, inv.PeriodDate,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE 1=1`

	var args []any

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}

	if filter.Paid != nil {
		args = append(args, *filter.Paid)
		query += fmt.Sprintf(" AND paid = $%d", len(args))
	}

	query += " ORDER BY issue_date DESC, invoice_number DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

func (s *Store) SetInvoicePaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	query := `
		UPDATE invoices
		SET paid = TRUE, payment_date = $2
		WHERE id = $1 AND paid = FALSE
	`

	res, err := s.db.ExecContext(ctx, query, id, paidAt)
	if err != nil {
		return fmt.Errorf("marking invoice paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking invoice paid: %w", err)
	}

	if n == 0 {
		if _, err := s.GetInvoice(ctx, id); err != nil {
			return err
		}

		return invoice.ErrAlreadyPaid
	}

	return nil
}

// NextSequence advances the per-year counter and returns the new value.
// The upsert keeps the counter monotonic even when two sessions generate
// invoices at the same time.
func (s *Store) NextSequence(ctx context.Context, year int) (int, error) {
	query := `
		INSERT INTO invoice_sequences (year, value)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET value = invoice_sequences.value + 1
		RETURNING value
	`

	var seq int
	if err := s.db.QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("advancing invoice sequence: %w", err)
	}

	return seq, nil
}

func (s *Store) HasGeneratedInvoice(ctx context.Context, recurringID uuid.UUID, period time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices WHERE recurring_id = $1 AND period_date = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, recurringID, period).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking generated invoice: %w", err)
	}

	return exists, nil
}
