package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/duartefn/solo/internal/money"
)

func item(desc string, qty string, priceCents int64) money.Item {
	return money.Item{
		Description:    desc,
		Quantity:       decimal.RequireFromString(qty),
		UnitPriceCents: priceCents,
	}
}

func TestTotal(t *testing.T) {
	type testCase struct {
		name         string
		items        []money.Item
		taxPercent   string
		wantSubtotal int64
		wantTotal    int64
	}

	tests := []testCase{
		{
			name:         "EmptyItems",
			items:        nil,
			taxPercent:   "21",
			wantSubtotal: 0,
			wantTotal:    0,
		},
		{
			name: "SingleLine",
			items: []money.Item{
				item("Design work", "1", 100000),
			},
			taxPercent:   "21",
			wantSubtotal: 100000,
			wantTotal:    121000,
		},
		{
			name: "FractionalQuantityRoundsPerLine",
			items: []money.Item{
				// 2.5 × 3333 = 8332.5 → 8333 per line, before summing.
				item("Consulting", "2.5", 3333),
				item("Consulting", "2.5", 3333),
			},
			taxPercent:   "0",
			wantSubtotal: 16666,
			wantTotal:    16666,
		},
		{
			name: "TaxRounding",
			items: []money.Item{
				item("Hosting", "1", 1001),
			},
			// 1001 × 1.21 = 1211.21 → 1211
			taxPercent:   "21",
			wantSubtotal: 1001,
			wantTotal:    1211,
		},
		{
			name: "FractionalTaxPercent",
			items: []money.Item{
				item("Retainer", "1", 20000),
			},
			// 20000 × 1.075 = 21500
			taxPercent:   "7.5",
			wantSubtotal: 20000,
			wantTotal:    21500,
		},
		{
			name: "MultipleLines",
			items: []money.Item{
				item("Development", "10", 7500),
				item("Design", "4", 6000),
				item("Domain", "1", 1499),
			},
			taxPercent:   "23",
			wantSubtotal: 100499,
			wantTotal:    123614,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.Total(tt.items, decimal.RequireFromString(tt.taxPercent))

			assert.Equal(t, tt.wantSubtotal, got.SubtotalCents)
			assert.Equal(t, tt.wantTotal, got.TotalCents)
		})
	}
}

func TestTotal_IsPure(t *testing.T) {
	items := []money.Item{item("Work", "3", 1000)}
	tax := decimal.RequireFromString("21")

	first := money.Total(items, tax)
	second := money.Total(items, tax)

	assert.Equal(t, first, second)
	assert.Equal(t, "3", items[0].Quantity.String())
}

func TestValidateItems(t *testing.T) {
	type testCase struct {
		name    string
		items   []money.Item
		wantErr string
	}

	tests := []testCase{
		{
			name:  "Valid",
			items: []money.Item{item("Work", "1.5", 5000)},
		},
		{
			name:    "MissingDescription",
			items:   []money.Item{item("", "1", 5000)},
			wantErr: "item 1: description is required",
		},
		{
			name:    "ZeroQuantity",
			items:   []money.Item{item("Work", "0", 5000)},
			wantErr: "item 1: quantity must be positive",
		},
		{
			name:    "NegativeQuantity",
			items:   []money.Item{item("Work", "-2", 5000)},
			wantErr: "item 1: quantity must be positive",
		},
		{
			name: "NegativePrice",
			items: []money.Item{
				item("Work", "1", 5000),
				item("Discount", "1", -1000),
			},
			wantErr: "item 2: unit price must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := money.ValidateItems(tt.items)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
