// Package rules implements the pluggable business-rule services consulted by
// the account state machine before it authorizes a drawdown. The reference
// implementation approves everything; a real fraud or limits checker can be
// swapped in at construction time.
package rules

import (
	"context"
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/money"
)

// Kind distinguishes the rule that was violated.
type Kind string

// Rule violation kinds.
const (
	KindATM          Kind = "atm"
	KindInvalidCheck Kind = "invalid_check"
)

// Error is a business-rule violation reported by a rule service. The state
// machine treats it as fatal to the command and emits zero events.
type Error struct {
	Kind      Kind
	Reason    string
	AccountID account.AccountID
	CheckNr   account.CheckNumber
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidCheck:
		return fmt.Sprintf("invalid check %s for account %s", e.CheckNr, e.AccountID)
	default:
		return fmt.Sprintf("ATM rule violation: %s", e.Reason)
	}
}

// NewATMError reports an ATM withdrawal rule violation.
func NewATMError(reason string) *Error {
	return &Error{Kind: KindATM, Reason: reason}
}

// NewInvalidCheckError reports a rejected check.
func NewInvalidCheckError(accountID account.AccountID, checkNr account.CheckNumber) *Error {
	return &Error{Kind: KindInvalidCheck, AccountID: accountID, CheckNr: checkNr}
}

// HappyPath approves every withdrawal and check. It is the reference
// account.RuleService implementation used until a real validator exists.
type HappyPath struct{}

// ValidateATMWithdrawal always succeeds.
func (HappyPath) ValidateATMWithdrawal(
	_ context.Context, _ account.AtmID, _ money.Money,
) error {
	return nil
}

// ValidateCheck always succeeds.
func (HappyPath) ValidateCheck(
	_ context.Context, _ account.AccountID, _ account.CheckNumber,
) error {
	return nil
}

var _ account.RuleService = HappyPath{}
