package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/duartefn/solo/internal/encoding"
	"github.com/duartefn/solo/internal/expense"
)

// Parser turns a bank statement CSV into expense rows. The statement
// format is auto-detected by matching column headers against the known
// profiles; credit rows (money coming in) are not expenses and are
// dropped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]expense.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting statement encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("unrecognized statement format: no known header found")
	}

	return parseRows(profile, cols, rows[headerIdx+1:])
}

// sniffDelimiter picks between semicolon and comma by which appears
// first in the buffered content. European bank exports favor the
// semicolon because the comma is their decimal separator.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(1024)

	for _, b := range head {
		switch b {
		case ';':
			return ';'
		case ',':
			return ','
		case '\n':
			return ';'
		}
	}

	return ';'
}

// colIndex maps header names to their column position.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string) ([]expense.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var out []expense.CreateParams

	for _, row := range rows {
		// Footer and summary rows have no parseable date; skip them.
		date, ok := parseDate(p, row, dateIdx)
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			continue
		}

		cents, ok := parseDebit(p, cols, row)
		if !ok {
			continue
		}

		out = append(out, expense.CreateParams{
			Description: desc,
			AmountCents: cents,
			Date:        date,
			Category:    "imported",
		})
	}

	return out, nil
}

func parseDate(p *Profile, row []string, idx int) (time.Time, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(p.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// parseDebit extracts the spent amount from a row, positive cents.
// Returns false for credits and rows with no usable amount.
func parseDebit(p *Profile, cols colIndex, row []string) (int64, bool) {
	switch p.AmountMode {
	case amountSigned:
		cents, err := parseAmount(cellValue(row, cols[p.AmountCol]))
		if err != nil || cents >= 0 {
			return 0, false
		}

		return -cents, true
	case amountSplit:
		cents, err := parseAmount(cellValue(row, cols[p.DebitCol]))
		if err != nil || cents == 0 {
			return 0, false
		}

		if cents < 0 {
			cents = -cents
		}

		return cents, true
	}

	return 0, false
}

// parseAmount accepts both "1.234,56" and "1234.56" spellings and
// returns signed cents.
func parseAmount(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
