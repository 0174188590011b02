package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duartefn/solo/internal/expense"
	"github.com/duartefn/solo/internal/importer"
)

// fakeLedger is an in-memory stand-in for the expense service.
type fakeLedger struct {
	expenses []*expense.Expense
}

func (f *fakeLedger) List(_ context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	var out []*expense.Expense

	for _, e := range f.expenses {
		if filter.StartDate != nil && e.Date.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && e.Date.After(*filter.EndDate) {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}

func (f *fakeLedger) Create(_ context.Context, params expense.CreateParams) (*expense.Expense, error) {
	e := &expense.Expense{
		ID:          uuid.New(),
		Description: params.Description,
		AmountCents: params.AmountCents,
		Date:        params.Date,
		Category:    params.Category,
	}
	f.expenses = append(f.expenses, e)

	return e, nil
}

const statement = `Data mov.;Data-valor;Descrição;Montante;Saldo
30-01-2026;30-01-2026;ADOBE SYSTEMS;-60,49;4.825,46
09-01-2026;09-01-2026;SEGURANCA SOCIAL;-588,74;2.385,95
`

func TestService_Import(t *testing.T) {
	ledger := &fakeLedger{}
	svc := importer.NewService(ledger)

	result, err := svc.Import(context.Background(), strings.NewReader(statement))
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	assert.Zero(t, result.Skipped)
	assert.Len(t, ledger.expenses, 2)
}

func TestService_ReimportSkipsDuplicates(t *testing.T) {
	ledger := &fakeLedger{}
	svc := importer.NewService(ledger)

	_, err := svc.Import(context.Background(), strings.NewReader(statement))
	require.NoError(t, err)

	result, err := svc.Import(context.Background(), strings.NewReader(statement))
	require.NoError(t, err)

	assert.Empty(t, result.Created)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, ledger.expenses, 2)
}

func TestService_OverlappingStatementImportsOnlyNewRows(t *testing.T) {
	ledger := &fakeLedger{}
	svc := importer.NewService(ledger)

	_, err := svc.Import(context.Background(), strings.NewReader(statement))
	require.NoError(t, err)

	// The next export repeats January and adds one February debit.
	overlap := statement + `05-02-2026;05-02-2026;HETZNER ONLINE;-42,90;2.343,05
`

	result, err := svc.Import(context.Background(), strings.NewReader(overlap))
	require.NoError(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "HETZNER ONLINE", result.Created[0].Description)
	assert.Equal(t, 2, result.Skipped)
	assert.Len(t, ledger.expenses, 3)
}

func TestService_EmptyStatement(t *testing.T) {
	ledger := &fakeLedger{}
	svc := importer.NewService(ledger)

	empty := `Data mov.;Data-valor;Descrição;Montante;Saldo
`

	result, err := svc.Import(context.Background(), strings.NewReader(empty))
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Zero(t, result.Skipped)
}
