package proposal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("proposal not found")

type Repository interface {
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*Proposal, error)
	ListProposals(ctx context.Context) ([]*Proposal, error)
	UpdateProposal(ctx context.Context, p *Proposal) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID    uuid.UUID
	Title       string
	Content     string
	AmountCents int64
	// Draft keeps the proposal unsent; the default is to create it
	// directly in sent.
	Draft bool
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Proposal, error) {
	status := StatusSent
	if params.Draft {
		status = StatusDraft
	}

	p := &Proposal{
		ClientID:    params.ClientID,
		Title:       params.Title,
		Content:     params.Content,
		AmountCents: params.AmountCents,
		Status:      status,
	}
	if err := s.repo.CreateProposal(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.repo.GetProposal(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Proposal, error) {
	return s.repo.ListProposals(ctx)
}

func (s *Service) Send(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.transition(ctx, id, (*Proposal).Send)
}

// Accept decides a sent proposal, optionally stamping who signed it and
// when. A proposal in any other state returns the guard error and is not
// written.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, signedBy string, signedAt time.Time) (*Proposal, error) {
	return s.transition(ctx, id, func(p *Proposal) error {
		return p.Accept(signedBy, signedAt)
	})
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Proposal, error) {
	return s.transition(ctx, id, (*Proposal).Reject)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, apply func(*Proposal) error) (*Proposal, error) {
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProposal(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
