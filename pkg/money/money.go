// Package money provides the monetary value object used by the account domain.
//
// Money pairs a signed decimal amount with an ISO 4217 currency code.
// Invariants:
//   - Arithmetic requires matching currencies; cross-currency math must go
//     through an exchange-rate lookup first (see pkg/exchange).
//   - A Money value is immutable; operations return new values.
package money

import (
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when performing arithmetic on money values
// with different currencies.
var ErrCurrencyMismatch = fmt.Errorf("currency mismatch")

// Money represents a signed decimal amount in a specific currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency currency.Code   `json:"currency"`
}

// New creates a Money value after validating the currency code.
func New(amount decimal.Decimal, c currency.Code) (Money, error) {
	if !c.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", currency.ErrInvalidCode, c)
	}
	return Money{Amount: amount, Currency: c}, nil
}

// NewFromString parses a decimal string (e.g., "9.23") into a Money value.
func NewFromString(amount string, c currency.Code) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, c)
}

// NewFromFloat converts a float amount (e.g., from an API request) into a
// Money value.
func NewFromFloat(amount float64, c currency.Code) (Money, error) {
	return New(decimal.NewFromFloat(amount), c)
}

// Zero returns the zero amount in the given currency.
func Zero(c currency.Code) Money {
	return Money{Amount: decimal.Zero, Currency: c}
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Negate returns the additive inverse, used for ledger drawdown entries.
func (m Money) Negate() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// IsZero reports whether the amount equals zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// Equal reports value equality, including currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String renders the amount with two decimal places and the currency code,
// e.g. "10.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
