// Package currency defines ISO 4217 currency codes used across the service.
package currency

import "fmt"

// Code represents a 3-letter ISO 4217 currency code (e.g., "USD").
type Code string

// Common currency codes.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
)

// DefaultCode is the currency assumed when none is supplied.
var DefaultCode = USD

// ErrInvalidCode is returned when a currency code is not a valid ISO 4217 code.
var ErrInvalidCode = fmt.Errorf("invalid currency code")

// IsValid checks that the code is exactly three uppercase ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// String returns the string representation of the currency code.
func (c Code) String() string { return string(c) }

// Parse validates a raw string and returns it as a Code.
func Parse(raw string) (Code, error) {
	c := Code(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, raw)
	}
	return c, nil
}
