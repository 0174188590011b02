package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/duartefn/solo/internal/proposal"
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

const selectProposalColumns = `id, client_id, title, content, amount_cents, status, signed_by, signed_at, created_at, updated_at`

func scanProposal(s scanner) (*proposal.Proposal, error) {
	var p proposal.Proposal

	var (
		content   sql.NullString
		statusStr string
	)

	if err := s.Scan(
		&p.ID, &p.ClientID, &p.Title, &content, &p.AmountCents, &statusStr,
		&p.SignedBy, &p.SignedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Content = content.String
	p.Status = proposal.Status(statusStr)

	return &p, nil
}

func (s *Store) CreateProposal(ctx context.Context, p *proposal.Proposal) error {
	query := `
		INSERT INTO proposals (client_id, title, content, amount_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.ClientID, p.Title, p.Content, p.AmountCents, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating proposal: %w", err)
	}

	return nil
}

func (s *Store) GetProposal(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + ` FROM proposals WHERE id = $1`

	p, err := scanProposal(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, proposal.ErrNotFound
		}

		return nil, fmt.Errorf("getting proposal: %w", err)
	}

	return p, nil
}

func (s *Store) ListProposals(ctx context.Context) ([]*proposal.Proposal, error) {
	query := `SELECT ` + selectProposalColumns + ` FROM proposals ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*proposal.Proposal

	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}

		proposals = append(proposals, p)
	}

	return proposals, rows.Err()
}

func (s *Store) UpdateProposal(ctx context.Context, p *proposal.Proposal) error {
	query := `
		UPDATE proposals
		SET title = $2, content = $3, amount_cents = $4, status = $5,
			signed_by = $6, signed_at = $7, updated_at = NOW()
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Content, p.AmountCents, p.Status, p.SignedBy, p.SignedAt,
	)
	if err != nil {
		return fmt.Errorf("updating proposal: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return proposal.ErrNotFound
	}

	return nil
}
