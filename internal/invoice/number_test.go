package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duartefn/solo/internal/invoice"
)

func TestNumber(t *testing.T) {
	type testCase struct {
		name string
		year int
		seq  int
		want string
	}

	tests := []testCase{
		{name: "FirstOfYear", year: 2026, seq: 1, want: "INV-2026-001"},
		{name: "TwoDigits", year: 2026, seq: 42, want: "INV-2026-042"},
		{name: "ThreeDigits", year: 2024, seq: 999, want: "INV-2024-999"},
		{name: "PastPadding", year: 2024, seq: 1000, want: "INV-2024-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.Number(tt.year, tt.seq))
		})
	}
}
