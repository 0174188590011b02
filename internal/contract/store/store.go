package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/contract"
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

const selectContractColumns = `id, client_id, project_id, content, status, expires_at, signed_by, signed_at, signature, created_at, updated_at`

func scanContract(s scanner) (*contract.Contract, error) {
	var c contract.Contract

	var statusStr string

	if err := s.Scan(
		&c.ID, &c.ClientID, &c.ProjectID, &c.Content, &statusStr,
		&c.ExpiresAt, &c.SignedBy, &c.SignedAt, &c.Signature,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.Status = contract.Status(statusStr)

	return &c, nil
}

func (s *Store) CreateContract(ctx context.Context, c *contract.Contract) error {
	query := `
		INSERT INTO contracts (client_id, project_id, content, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.ClientID, c.ProjectID, c.Content, c.Status, c.ExpiresAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating contract: %w", err)
	}

	return nil
}

func (s *Store) GetContract(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + ` FROM contracts WHERE id = $1`

	c, err := scanContract(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contract.ErrNotFound
		}

		return nil, fmt.Errorf("getting contract: %w", err)
	}

	return c, nil
}

func (s *Store) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	query := `SELECT ` + selectContractColumns + ` FROM contracts ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*contract.Contract

	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contract: %w", err)
		}

		contracts = append(contracts, c)
	}

	return contracts, rows.Err()
}

func (s *Store) UpdateContract(ctx context.Context, c *contract.Contract) error {
	query := `
		UPDATE contracts
		SET content = $2, status = $3, expires_at = $4,
			signed_by = $5, signed_at = $6, signature = $7, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		c.ID, c.Content, c.Status, c.ExpiresAt, c.SignedBy, c.SignedAt, c.Signature,
	)
	if err != nil {
		return fmt.Errorf("updating contract: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return contract.ErrNotFound
	}

	return nil
}
