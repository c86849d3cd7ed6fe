package account

import (
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/money"
)

// RejectedCommandError is returned when a command is illegal in the account's
// current state. Retrying the same command cannot succeed.
type RejectedCommandError struct {
	Reason string
}

func (e *RejectedCommandError) Error() string {
	return fmt.Sprintf("rejected command: %s", e.Reason)
}

// InsufficientFundsError is returned when a withdrawal or check disbursement
// would drive the balance below zero.
type InsufficientFundsError struct {
	AccountID AccountID
	Amount    money.Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s funds not available in account %s", e.Amount, e.AccountID)
}
