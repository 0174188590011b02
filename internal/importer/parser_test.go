package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/duartefn/solo/internal/importer"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_AccountMovements(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JANE DOE
NIF;"=""123"""

Dados da consulta
Período;Últimos 90 dias

Data mov.;Data-valor;Descrição;Montante;Saldo após movimento
30-01-2026;30-01-2026;ADOBE SYSTEMS;-60,49;4.825,46
15-01-2026;15-01-2026;CLIENTE ACME;2.500,00;4.885,95
09-01-2026;09-01-2026;SEGURANCA SOCIAL;-588,74;2.385,95
`

	rows, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)

	// The credit row is not an expense.
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 1, 30), rows[0].Date)
	assert.Equal(t, "ADOBE SYSTEMS", rows[0].Description)
	assert.Equal(t, int64(6049), rows[0].AmountCents)
	assert.Equal(t, "imported", rows[0].Category)

	assert.Equal(t, date(2026, 1, 9), rows[1].Date)
	assert.Equal(t, int64(58874), rows[1].AmountCents)
}

func TestParser_CardStatement(t *testing.T) {
	csv := `Cartão;1234 **** **** 5678

Data;Descrição;Débito;Crédito
05-03-2026;HETZNER ONLINE;42,90;
10-03-2026;ESTORNO COMPRA;;15,00
20-03-2026;FNAC LISBOA;129,99;
`

	rows, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "HETZNER ONLINE", rows[0].Description)
	assert.Equal(t, int64(4290), rows[0].AmountCents)
	assert.Equal(t, "FNAC LISBOA", rows[1].Description)
	assert.Equal(t, int64(12999), rows[1].AmountCents)
}

func TestParser_GenericExport(t *testing.T) {
	csv := `Date,Description,Amount
2026-02-01,GitHub,-4.00
2026-02-03,Refund,12.50
2026-02-10,Office chair,-250.00
`

	rows, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 2, 1), rows[0].Date)
	assert.Equal(t, int64(400), rows[0].AmountCents)
	assert.Equal(t, date(2026, 2, 10), rows[1].Date)
	assert.Equal(t, int64(25000), rows[1].AmountCents)
}

func TestParser_Windows1252Input(t *testing.T) {
	csv := `Data mov.;Data-valor;Descrição;Montante;Saldo
12-01-2026;12-01-2026;PAPELARIA SÃO JOÃO;-19,90;100,00
`

	encoded, err := charmap.Windows1252.NewEncoder().String(csv)
	require.NoError(t, err)

	rows, err := importer.NewParser().Parse(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "PAPELARIA SÃO JOÃO", rows[0].Description)
	assert.Equal(t, int64(1990), rows[0].AmountCents)
}

func TestParser_UnknownFormat(t *testing.T) {
	csv := `foo;bar;baz
1;2;3
`

	_, err := importer.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized statement format")
}
