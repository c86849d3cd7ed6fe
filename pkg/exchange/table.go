// Package exchange provides a static, EUR-pivoted exchange-rate table in the
// shape published by the ECB euro foreign exchange reference feed.
package exchange

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/money"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency is returned when a rate is requested for a currency
// absent from the table.
var ErrUnsupportedCurrency = fmt.Errorf("unsupported currency")

// Table holds exchange rates quoted against the euro. It is loaded once at
// startup and read-only afterwards, so it is safe for concurrent use.
type Table struct {
	rates map[currency.Code]decimal.Decimal
}

// ParseECB reads an ECB eurofxref CSV (a header row of currency codes and a
// single row of rates) into a Table.
func ParseECB(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse exchange rate csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("exchange rate csv needs a header and a rate row, got %d rows", len(records))
	}
	header, row := records[0], records[1]
	if len(row) < len(header) {
		return nil, fmt.Errorf("exchange rate csv rate row is shorter than its header")
	}

	rates := map[currency.Code]decimal.Decimal{
		currency.EUR: decimal.NewFromInt(1),
	}
	for i := 1; i < len(header); i++ { // column 0 is the quote date
		code := currency.Code(strings.TrimSpace(header[i]))
		if code == "" {
			continue // trailing comma in the feed
		}
		if !code.IsValid() {
			return nil, fmt.Errorf("%w in header: %q", currency.ErrInvalidCode, header[i])
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(row[i]))
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		rates[code] = rate
	}
	return &Table{rates: rates}, nil
}

// Rate returns the multiplier converting one unit of from into to.
func (t *Table) Rate(from, to currency.Code) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	fromRate, ok := t.rates[from]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := t.rates[to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}
	return toRate.DivRound(fromRate, 12), nil
}

// Convert exchanges a money value into the target currency, rounding to two
// decimal places. Conversion is a no-op when the currencies already match.
func (t *Table) Convert(m money.Money, to currency.Code) (money.Money, error) {
	if m.Currency == to {
		return m, nil
	}
	rate, err := t.Rate(m.Currency, to)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: m.Amount.Mul(rate).Round(2), Currency: to}, nil
}
