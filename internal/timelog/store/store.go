package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/timelog"
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

const selectEntryColumns = `id, project_id, description, entry_date, duration_seconds, invoice_id, created_at`

func scanEntry(s scanner) (*timelog.Entry, error) {
	var e timelog.Entry

	var desc sql.NullString

	if err := s.Scan(
		&e.ID, &e.ProjectID, &desc, &e.Date, &e.DurationSeconds, &e.InvoiceID, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	e.Description = desc.String

	return &e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *timelog.Entry) error {
	query := `
		INSERT INTO time_entries (project_id, description, entry_date, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.ProjectID, e.Description, e.Date, e.DurationSeconds,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating time entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*timelog.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM time_entries WHERE id = $1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, timelog.ErrNotFound
		}

		return nil, fmt.Errorf("getting time entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter timelog.ListFilter) ([]*timelog.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM time_entries WHERE 1=1`

	var args []any

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}

	if filter.Unbilled {
		query += " AND invoice_id IS NULL"
	}

	query += " ORDER BY entry_date, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []*timelog.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SetInvoice links an entry to an invoice. The WHERE clause makes the write
// idempotent for the same invoice and a conflict for any other: an entry is
// billed at most once.
func (s *Store) SetInvoice(ctx context.Context, entryID, invoiceID uuid.UUID) error {
	query := `
		UPDATE time_entries
		SET invoice_id = $2
		WHERE id = $1 AND (invoice_id IS NULL OR invoice_id = $2)
	`

	res, err := s.db.ExecContext(ctx, query, entryID, invoiceID)
	if err != nil {
		return fmt.Errorf("linking time entry to invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("linking time entry to invoice: %w", err)
	}

	if n == 0 {
		// Either the entry does not exist or it is billed on another invoice.
		if _, err := s.GetEntry(ctx, entryID); err != nil {
			return err
		}

		return timelog.ErrAlreadyBilled
	}

	return nil
}
