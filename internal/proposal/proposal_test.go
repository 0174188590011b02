package proposal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/solo/internal/proposal"
)

type mockRepo struct {
	proposals map[uuid.UUID]*proposal.Proposal
	writes    int
}

func newMockRepo(proposals ...*proposal.Proposal) *mockRepo {
	m := &mockRepo{proposals: make(map[uuid.UUID]*proposal.Proposal)}
	for _, p := range proposals {
		m.proposals[p.ID] = p
	}

	return m
}

func (m *mockRepo) CreateProposal(_ context.Context, p *proposal.Proposal) error {
	p.ID = uuid.New()
	m.proposals[p.ID] = p

	return nil
}

func (m *mockRepo) GetProposal(_ context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	p, ok := m.proposals[id]
	if !ok {
		return nil, proposal.ErrNotFound
	}

	cp := *p

	return &cp, nil
}

func (m *mockRepo) ListProposals(_ context.Context) ([]*proposal.Proposal, error) {
	var out []*proposal.Proposal
	for _, p := range m.proposals {
		out = append(out, p)
	}

	return out, nil
}

func (m *mockRepo) UpdateProposal(_ context.Context, p *proposal.Proposal) error {
	if _, ok := m.proposals[p.ID]; !ok {
		return proposal.ErrNotFound
	}

	cp := *p
	m.proposals[p.ID] = &cp
	m.writes++

	return nil
}

func TestService_Create_DefaultsToSent(t *testing.T) {
	svc := proposal.NewService(newMockRepo())

	p, err := svc.Create(context.Background(), proposal.CreateParams{
		ClientID:    uuid.New(),
		Title:       "Brand refresh",
		AmountCents: 250000,
	})
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusSent, p.Status)

	draft, err := svc.Create(context.Background(), proposal.CreateParams{
		ClientID: uuid.New(),
		Title:    "Retainer 2027",
		Draft:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusDraft, draft.Status)
}

func TestService_Accept(t *testing.T) {
	signedAt := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	type testCase struct {
		name     string
		current  proposal.Status
		signedBy string
		wantErr  string
	}

	tests := []testCase{
		{name: "FromSent", current: proposal.StatusSent},
		{name: "FromSentWithSignature", current: proposal.StatusSent, signedBy: "Jane Doe"},
		{name: "AlreadyAccepted", current: proposal.StatusAccepted, wantErr: "proposal already accepted"},
		{name: "AlreadyRejected", current: proposal.StatusRejected, wantErr: "proposal already rejected"},
		{name: "StillDraft", current: proposal.StatusDraft, wantErr: "proposal not yet sent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &proposal.Proposal{ID: uuid.New(), Status: tt.current}
			repo := newMockRepo(stored)
			svc := proposal.NewService(repo)

			got, err := svc.Accept(context.Background(), stored.ID, tt.signedBy, signedAt)

			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Equal(t, tt.current, stored.Status)
				assert.Zero(t, repo.writes)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, proposal.StatusAccepted, got.Status)
			assert.Equal(t, 1, repo.writes)

			if tt.signedBy == "" {
				assert.Nil(t, got.SignedBy)
				assert.Nil(t, got.SignedAt)
			} else {
				require.NotNil(t, got.SignedBy)
				assert.Equal(t, tt.signedBy, *got.SignedBy)
				require.NotNil(t, got.SignedAt)
				assert.Equal(t, signedAt, *got.SignedAt)
			}
		})
	}
}

func TestService_Reject(t *testing.T) {
	stored := &proposal.Proposal{ID: uuid.New(), Status: proposal.StatusSent}
	repo := newMockRepo(stored)
	svc := proposal.NewService(repo)

	got, err := svc.Reject(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusRejected, got.Status)

	// Rejecting again is a guarded no-op.
	_, err = svc.Reject(context.Background(), stored.ID)
	require.EqualError(t, err, "proposal already rejected")
	assert.Equal(t, 1, repo.writes)
}

func TestService_Send(t *testing.T) {
	stored := &proposal.Proposal{ID: uuid.New(), Status: proposal.StatusDraft}
	repo := newMockRepo(stored)
	svc := proposal.NewService(repo)

	got, err := svc.Send(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusSent, got.Status)

	_, err = svc.Send(context.Background(), stored.ID)
	require.EqualError(t, err, "proposal already sent")
}
