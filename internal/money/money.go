// Package money holds the totalling rules shared by every document that
// carries line items. All amounts are int64 cents; fractional quantities
// and tax rates go through shopspring/decimal so no float ever touches
// a stored amount.
package money

import (
	"strconv"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is a single line of a document. It has no identity of its own and
// always belongs to exactly one parent document.
type Item struct {
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPriceCents int64           `json:"unit_price_cents"`
}

// Totals is the computed money summary of a line-item collection.
type Totals struct {
	SubtotalCents int64
	TotalCents    int64
}

// LineCents returns quantity × unit price rounded to whole cents,
// half away from zero.
func LineCents(it Item) int64 {
	return it.Quantity.Mul(decimal.NewFromInt(it.UnitPriceCents)).Round(0).IntPart()
}

// SubtotalCents sums the rounded line amounts. Each line is rounded to
// whole cents before summing, so the subtotal of a document equals the
// sum of the amounts its lines display.
func SubtotalCents(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += LineCents(it)
	}

	return sum
}

// Total computes subtotal and tax-inclusive total for the given items.
// total = subtotal × (1 + taxPercent/100), rounded to the nearest cent.
// An empty item list yields zero totals.
func Total(items []Item, taxPercent decimal.Decimal) Totals {
	subtotal := SubtotalCents(items)

	total := decimal.NewFromInt(subtotal).
		Mul(hundred.Add(taxPercent)).
		DivRound(hundred, 0).
		IntPart()

	return Totals{SubtotalCents: subtotal, TotalCents: total}
}

// ValidateItems reports the first invalid line: empty description,
// non-positive quantity, or negative unit price. The totalling functions
// themselves accept anything; callers validate at the boundary.
func ValidateItems(items []Item) error {
	for i, it := range items {
		switch {
		case it.Description == "":
			return &ItemError{Index: i, Reason: "description is required"}
		case it.Quantity.Sign() <= 0:
			return &ItemError{Index: i, Reason: "quantity must be positive"}
		case it.UnitPriceCents < 0:
			return &ItemError{Index: i, Reason: "unit price must not be negative"}
		}
	}

	return nil
}

// ItemError describes why a line item was rejected.
type ItemError struct {
	Index  int
	Reason string
}

func (e *ItemError) Error() string {
	return "item " + strconv.Itoa(e.Index+1) + ": " + e.Reason
}
