package contract_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/solo/internal/contract"
)

type mockRepo struct {
	contracts map[uuid.UUID]*contract.Contract
	writes    int
}

func newMockRepo(contracts ...*contract.Contract) *mockRepo {
	m := &mockRepo{contracts: make(map[uuid.UUID]*contract.Contract)}
	for _, c := range contracts {
		m.contracts[c.ID] = c
	}

	return m
}

func (m *mockRepo) CreateContract(_ context.Context, c *contract.Contract) error {
	c.ID = uuid.New()
	m.contracts[c.ID] = c

	return nil
}

func (m *mockRepo) GetContract(_ context.Context, id uuid.UUID) (*contract.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, contract.ErrNotFound
	}

	cp := *c

	return &cp, nil
}

func (m *mockRepo) ListContracts(_ context.Context) ([]*contract.Contract, error) {
	var out []*contract.Contract
	for _, c := range m.contracts {
		out = append(out, c)
	}

	return out, nil
}

func (m *mockRepo) UpdateContract(_ context.Context, c *contract.Contract) error {
	if _, ok := m.contracts[c.ID]; !ok {
		return contract.ErrNotFound
	}

	cp := *c
	m.contracts[c.ID] = &cp
	m.writes++

	return nil
}

func TestService_SignFlow(t *testing.T) {
	signedAt := time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

	stored := &contract.Contract{
		ID:        uuid.New(),
		ClientID:  uuid.New(),
		ProjectID: uuid.New(),
		Status:    contract.StatusDraft,
	}
	repo := newMockRepo(stored)
	svc := contract.NewService(repo)

	// Signing a draft is refused: it was never sent.
	_, err := svc.Sign(context.Background(), stored.ID, "Jane Doe", "sig-payload", signedAt)
	require.EqualError(t, err, "contract not yet sent")
	assert.Zero(t, repo.writes)

	sent, err := svc.Send(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusSent, sent.Status)

	signed, err := svc.Sign(context.Background(), stored.ID, "Jane Doe", "sig-payload", signedAt)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusSigned, signed.Status)
	require.NotNil(t, signed.SignedBy)
	assert.Equal(t, "Jane Doe", *signed.SignedBy)
	require.NotNil(t, signed.SignedAt)
	assert.Equal(t, signedAt, *signed.SignedAt)
	require.NotNil(t, signed.Signature)
	assert.Equal(t, "sig-payload", *signed.Signature)

	// Signing again is a guarded no-op and writes nothing further.
	writes := repo.writes
	_, err = svc.Sign(context.Background(), stored.ID, "Someone Else", "other", signedAt)
	require.EqualError(t, err, "contract already signed")
	assert.Equal(t, writes, repo.writes)

	final, err := svc.Get(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", *final.SignedBy)
}

func TestService_SetExpiry(t *testing.T) {
	expiry := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		current contract.Status
		wantErr string
	}

	tests := []testCase{
		{name: "OnDraft", current: contract.StatusDraft},
		{name: "AfterSend", current: contract.StatusSent, wantErr: "contract already sent"},
		{name: "AfterSign", current: contract.StatusSigned, wantErr: "contract already signed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &contract.Contract{ID: uuid.New(), Status: tt.current}
			repo := newMockRepo(stored)
			svc := contract.NewService(repo)

			got, err := svc.SetExpiry(context.Background(), stored.ID, expiry)

			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Nil(t, stored.ExpiresAt)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.ExpiresAt)
			assert.Equal(t, expiry, *got.ExpiresAt)
		})
	}
}
