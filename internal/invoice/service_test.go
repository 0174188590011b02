package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/duartefn/solo/internal/client"
	"github.com/duartefn/solo/internal/invoice"
	"github.com/duartefn/solo/internal/money"
	"github.com/duartefn/solo/internal/notify"
	"github.com/duartefn/solo/internal/project"
	"github.com/duartefn/solo/internal/timelog"
)

const (
	hourlyRateCents = 5000
	dueDays         = 30
)

type recordingNotifier struct {
	events []notify.InvoicePaid
}

func (n *recordingNotifier) NotifyInvoicePaid(_ context.Context, ev notify.InvoicePaid) {
	n.events = append(n.events, ev)
}

type mocks struct {
	repo      *invoice.MockRepository
	clients   *invoice.MockClients
	projects  *invoice.MockProjects
	timesheet *invoice.MockTimeSheet
	notifier  *recordingNotifier
}

func newService(t *testing.T) (*invoice.Service, *mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)

	m := &mocks{
		repo:      invoice.NewMockRepository(ctrl),
		clients:   invoice.NewMockClients(ctrl),
		projects:  invoice.NewMockProjects(ctrl),
		timesheet: invoice.NewMockTimeSheet(ctrl),
		notifier:  &recordingNotifier{},
	}

	svc := invoice.NewService(m.repo, m.clients, m.projects, m.timesheet, m.notifier, hourlyRateCents, dueDays)

	return svc, m
}

func TestService_Create(t *testing.T) {
	clientID := uuid.New()
	issueDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	validParams := invoice.CreateParams{
		ClientID: clientID,
		Items: []money.Item{
			{Description: "Design sprint", Quantity: decimal.NewFromInt(2), UnitPriceCents: 50000},
		},
		TaxPercent: decimal.NewFromInt(21),
		IssueDate:  issueDate,
	}

	type testCase struct {
		name      string
		params    invoice.CreateParams
		setupMock func(m *mocks)
		check     func(t *testing.T, inv *invoice.Invoice)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: validParams,
			setupMock: func(m *mocks) {
				m.clients.EXPECT().Get(gomock.Any(), clientID).Return(&client.Client{ID: clientID}, nil)
				m.repo.EXPECT().NextSequence(gomock.Any(), 2026).Return(7, nil)
				m.repo.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.Equal(t, "INV-2026-007", inv.Number)
				assert.Equal(t, int64(100000), inv.SubtotalCents)
				assert.Equal(t, int64(121000), inv.TotalCents)
				// Zero due date defaults to issue date plus the payment term.
				assert.Equal(t, issueDate.AddDate(0, 0, dueDays), inv.DueDate)
				assert.False(t, inv.Paid)
			},
		},
		{
			name: "UnknownClient",
			params: invoice.CreateParams{
				ClientID:  clientID,
				Items:     validParams.Items,
				IssueDate: issueDate,
			},
			setupMock: func(m *mocks) {
				m.clients.EXPECT().Get(gomock.Any(), clientID).Return(nil, client.ErrNotFound)
			},
			wantErr: client.ErrNotFound,
		},
		{
			name: "UnknownProject",
			params: func() invoice.CreateParams {
				p := validParams
				projectID := uuid.New()
				p.ProjectID = &projectID
				return p
			}(),
			setupMock: func(m *mocks) {
				m.clients.EXPECT().Get(gomock.Any(), clientID).Return(&client.Client{ID: clientID}, nil)
				m.projects.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, project.ErrNotFound)
			},
			wantErr: project.ErrNotFound,
		},
		{
			name: "InvalidItems",
			params: invoice.CreateParams{
				ClientID: clientID,
				Items: []money.Item{
					{Description: "Work", Quantity: decimal.NewFromInt(-1), UnitPriceCents: 100},
				},
				IssueDate: issueDate,
			},
			// No mock expectations: validation fails before any lookup or write.
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			if tt.check == nil {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestService_Create_SequencesAreMonotonic(t *testing.T) {
	svc, m := newService(t)

	clientID := uuid.New()
	issueDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	m.clients.EXPECT().Get(gomock.Any(), clientID).Return(&client.Client{ID: clientID}, nil).Times(2)

	seq := 0
	m.repo.EXPECT().
		NextSequence(gomock.Any(), 2026).
		DoAndReturn(func(context.Context, int) (int, error) {
			seq++
			return seq, nil
		}).
		Times(2)
	m.repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	params := invoice.CreateParams{
		ClientID:  clientID,
		Items:     []money.Item{{Description: "Work", Quantity: decimal.NewFromInt(1), UnitPriceCents: 100}},
		IssueDate: issueDate,
	}

	first, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-001", first.Number)
	assert.Equal(t, "INV-2026-002", second.Number)
	assert.NotEqual(t, first.Number, second.Number)
}

func TestService_MarkPaid(t *testing.T) {
	id := uuid.New()
	clientID := uuid.New()
	paidAt := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name       string
		setupMock  func(m *mocks)
		wantErr    error
		wantEvents int
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *mocks) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{
					ID:         id,
					ClientID:   clientID,
					Number:     "INV-2026-003",
					TotalCents: 121000,
				}, nil)
				m.repo.EXPECT().SetInvoicePaid(gomock.Any(), id, paidAt).Return(nil)
			},
			wantEvents: 1,
		},
		{
			name: "AlreadyPaidIsGuardedNoOp",
			setupMock: func(m *mocks) {
				paid := paidAt.AddDate(0, -1, 0)
				m.repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{
					ID:          id,
					ClientID:    clientID,
					Paid:        true,
					PaymentDate: &paid,
				}, nil)
				// No SetInvoicePaid expectation: the guard must not write.
			},
			wantErr: invoice.ErrAlreadyPaid,
		},
		{
			name: "NotFound",
			setupMock: func(m *mocks) {
				m.repo.EXPECT().GetInvoice(gomock.Any(), id).Return(nil, invoice.ErrNotFound)
			},
			wantErr: invoice.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.setupMock(m)

			got, err := svc.MarkPaid(context.Background(), id, paidAt)

			assert.Len(t, m.notifier.events, tt.wantEvents)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Paid)
			require.NotNil(t, got.PaymentDate)
			assert.Equal(t, paidAt, *got.PaymentDate)

			ev := m.notifier.events[0]
			assert.Equal(t, "INV-2026-003", ev.InvoiceNumber)
			assert.Equal(t, int64(121000), ev.TotalCents)
			assert.Equal(t, clientID, ev.ClientID)
		})
	}
}

func TestService_BillTimeEntries(t *testing.T) {
	projectID := uuid.New()
	clientID := uuid.New()
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tax := decimal.NewFromInt(21)

	proj := &project.Project{ID: projectID, ClientID: clientID, Name: "Acme relaunch"}

	entryA := &timelog.Entry{ID: uuid.New(), ProjectID: projectID, DurationSeconds: 2 * 3600}
	entryB := &timelog.Entry{ID: uuid.New(), ProjectID: projectID, DurationSeconds: 90 * 60}

	t.Run("BillsAllUnbilledEntries", func(t *testing.T) {
		svc, m := newService(t)

		m.projects.EXPECT().Get(gomock.Any(), projectID).Return(proj, nil)
		m.timesheet.EXPECT().ListUnbilled(gomock.Any(), projectID).Return([]*timelog.Entry{entryA, entryB}, nil)
		m.repo.EXPECT().NextSequence(gomock.Any(), 2026).Return(11, nil)
		m.repo.EXPECT().
			CreateInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
				inv.ID = uuid.New()
				return nil
			})
		m.timesheet.EXPECT().MarkBilled(gomock.Any(), entryA.ID, gomock.Any()).Return(nil)
		m.timesheet.EXPECT().MarkBilled(gomock.Any(), entryB.ID, gomock.Any()).Return(nil)

		res, err := svc.BillTimeEntries(context.Background(), projectID, tax, asOf)
		require.NoError(t, err)

		// 3.5 hours at 5000 cents/hour.
		assert.Equal(t, int64(17500), res.Invoice.SubtotalCents)
		assert.Equal(t, int64(21175), res.Invoice.TotalCents)
		assert.Equal(t, clientID, res.Invoice.ClientID)
		require.NotNil(t, res.Invoice.ProjectID)
		assert.Equal(t, projectID, *res.Invoice.ProjectID)
		assert.ElementsMatch(t, []uuid.UUID{entryA.ID, entryB.ID}, res.Billed)
		assert.Empty(t, res.Failed)
	})

	t.Run("RetriesFailedLinkAndReportsIt", func(t *testing.T) {
		svc, m := newService(t)

		m.projects.EXPECT().Get(gomock.Any(), projectID).Return(proj, nil)
		m.timesheet.EXPECT().ListUnbilled(gomock.Any(), projectID).Return([]*timelog.Entry{entryA, entryB}, nil)
		m.repo.EXPECT().NextSequence(gomock.Any(), 2026).Return(12, nil)
		m.repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)

		m.timesheet.EXPECT().MarkBilled(gomock.Any(), entryA.ID, gomock.Any()).Return(nil)
		m.timesheet.EXPECT().
			MarkBilled(gomock.Any(), entryB.ID, gomock.Any()).
			Return(errors.New("gateway unavailable")).
			Times(3)

		res, err := svc.BillTimeEntries(context.Background(), projectID, tax, asOf)
		require.NoError(t, err)

		// The invoice exists; the unlinked entry is reported, not lost.
		assert.Equal(t, []uuid.UUID{entryA.ID}, res.Billed)
		assert.Equal(t, []uuid.UUID{entryB.ID}, res.Failed)
	})

	t.Run("NothingToBill", func(t *testing.T) {
		svc, m := newService(t)

		m.projects.EXPECT().Get(gomock.Any(), projectID).Return(proj, nil)
		m.timesheet.EXPECT().ListUnbilled(gomock.Any(), projectID).Return(nil, nil)

		res, err := svc.BillTimeEntries(context.Background(), projectID, tax, asOf)
		assert.ErrorIs(t, err, invoice.ErrNothingToBill)
		assert.Nil(t, res)
	})
}
