package account

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// AccountID is the opaque 64-bit identifier of a bank account. It is derived
// from the aggregate's time-ordered identity and stable for the lifetime of
// the account.
type AccountID int64

// String renders the id in its canonical decimal form, which is also the
// aggregate id used by the event store.
func (id AccountID) String() string { return strconv.FormatInt(int64(id), 10) }

// Int64 returns the raw identifier.
func (id AccountID) Int64() int64 { return int64(id) }

// ParseAccountID parses the canonical decimal form back into an AccountID.
func ParseAccountID(raw string) (AccountID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q: %w", raw, err)
	}
	return AccountID(n), nil
}

// MailingAddress is a validated free-text postal address.
type MailingAddress string

// NewMailingAddress validates and wraps a raw address string.
func NewMailingAddress(raw string) (MailingAddress, error) {
	if err := validate.Var(raw, "required,min=1,max=256"); err != nil {
		return "", fmt.Errorf("invalid mailing address: %w", err)
	}
	return MailingAddress(raw), nil
}

// String returns the address text.
func (a MailingAddress) String() string { return string(a) }

// EmailAddress is an RFC-shaped email address.
type EmailAddress string

// NewEmailAddress validates and wraps a raw email string.
func NewEmailAddress(raw string) (EmailAddress, error) {
	if err := validate.Var(raw, "required,email"); err != nil {
		return "", fmt.Errorf("invalid email address %q: %w", raw, err)
	}
	return EmailAddress(raw), nil
}

// String returns the email text.
func (e EmailAddress) String() string { return string(e) }

// AtmID is the opaque identifier of a withdrawal terminal.
type AtmID string

// String returns the terminal identifier.
func (id AtmID) String() string { return string(id) }

// CheckNumber identifies a written check.
type CheckNumber uint32

// String renders the check number in decimal form.
func (n CheckNumber) String() string { return strconv.FormatUint(uint64(n), 10) }

var validate = validator.New()
