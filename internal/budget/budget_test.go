package budget_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/solo/internal/budget"
	"github.com/duartefn/solo/internal/money"
)

// mockRepo is a hand-rolled repository double; statusWrites counts every
// UpdateBudgetStatus call so guard tests can assert nothing was written.
type mockRepo struct {
	budgets      map[uuid.UUID]*budget.Budget
	statusWrites int
}

func newMockRepo(budgets ...*budget.Budget) *mockRepo {
	m := &mockRepo{budgets: make(map[uuid.UUID]*budget.Budget)}
	for _, b := range budgets {
		m.budgets[b.ID] = b
	}

	return m
}

func (m *mockRepo) CreateBudget(_ context.Context, b *budget.Budget) error {
	b.ID = uuid.New()
	m.budgets[b.ID] = b

	return nil
}

func (m *mockRepo) GetBudget(_ context.Context, id uuid.UUID) (*budget.Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return nil, budget.ErrNotFound
	}

	cp := *b

	return &cp, nil
}

func (m *mockRepo) ListBudgets(_ context.Context) ([]*budget.Budget, error) {
	var out []*budget.Budget
	for _, b := range m.budgets {
		out = append(out, b)
	}

	return out, nil
}

func (m *mockRepo) UpdateBudgetStatus(_ context.Context, id uuid.UUID, status budget.Status) error {
	b, ok := m.budgets[id]
	if !ok {
		return budget.ErrNotFound
	}

	b.Status = status
	m.statusWrites++

	return nil
}

func TestService_Create_SumsItems(t *testing.T) {
	repo := newMockRepo()
	svc := budget.NewService(repo)

	b, err := svc.Create(context.Background(), budget.CreateParams{
		ClientID:    uuid.New(),
		Description: "Website redesign",
		Items: []money.Item{
			{Description: "Design", Quantity: decimal.NewFromInt(3), UnitPriceCents: 40000},
			{Description: "Copywriting", Quantity: decimal.RequireFromString("1.5"), UnitPriceCents: 20000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(150000), b.AmountCents)
	assert.Equal(t, budget.StatusPending, b.Status)
}

func TestService_Transitions(t *testing.T) {
	type testCase struct {
		name       string
		current    budget.Status
		accept     bool
		wantStatus budget.Status
		wantErr    string
	}

	tests := []testCase{
		{name: "AcceptPending", current: budget.StatusPending, accept: true, wantStatus: budget.StatusAccepted},
		{name: "RejectPending", current: budget.StatusPending, wantStatus: budget.StatusRejected},
		{name: "AcceptAlreadyAccepted", current: budget.StatusAccepted, accept: true, wantErr: "budget already accepted"},
		{name: "AcceptAlreadyRejected", current: budget.StatusRejected, accept: true, wantErr: "budget already rejected"},
		{name: "RejectAlreadyAccepted", current: budget.StatusAccepted, wantErr: "budget already accepted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &budget.Budget{ID: uuid.New(), Status: tt.current}
			repo := newMockRepo(stored)
			svc := budget.NewService(repo)

			var (
				got *budget.Budget
				err error
			)

			if tt.accept {
				got, err = svc.Accept(context.Background(), stored.ID)
			} else {
				got, err = svc.Reject(context.Background(), stored.ID)
			}

			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				assert.Nil(t, got)

				var stateErr *budget.StateError
				assert.ErrorAs(t, err, &stateErr)

				// The stored record and the store itself are untouched.
				assert.Equal(t, tt.current, stored.Status)
				assert.Zero(t, repo.statusWrites)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.Equal(t, 1, repo.statusWrites)
		})
	}
}

func TestService_Transition_NotFound(t *testing.T) {
	svc := budget.NewService(newMockRepo())

	_, err := svc.Accept(context.Background(), uuid.New())
	assert.ErrorIs(t, err, budget.ErrNotFound)
}
