// Package query holds the read side: the denormalized account view, the
// projection that folds committed events into it, and the tracing observer
// that audits each commit.
package query

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/money"
)

// LedgerEntry is one human-readable line item recorded in the view.
type LedgerEntry struct {
	Description string      `json:"description"`
	Amount      money.Money `json:"amount"`
}

// AccountView is the queryable projection of one account. It is an
// eventually-consistent derived artifact: rebuilt by replaying the event
// stream from empty state, it converges to the aggregate balance once both
// have observed the same events, modulo the view's fixed display currency.
type AccountView struct {
	AccountID     *account.AccountID    `json:"account_id"`
	Balance       money.Money           `json:"balance"`
	WrittenChecks []account.CheckNumber `json:"written_checks"`
	Ledger        []LedgerEntry         `json:"ledger"`
}

// NewAccountView returns an empty view holding a zero balance in the display
// currency.
func NewAccountView(display currency.Code) *AccountView {
	return &AccountView{Balance: money.Zero(display)}
}

// Updater folds committed events into account views. It owns the display
// currency and the conversion of foreign-currency entries at commit time.
type Updater struct {
	display currency.Code
	rates   account.Converter
	logger  *slog.Logger
}

// NewUpdater builds a view updater converting into the given display
// currency. rates may be nil when only one currency is in play.
func NewUpdater(display currency.Code, rates account.Converter, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{display: display, rates: rates, logger: logger}
}

// Update applies one committed event to the view, in commit order. The fold
// is pure and in-place; events the view does not care about are ignored.
func (u *Updater) Update(view *AccountView, env cqrs.EventEnvelope) error {
	switch ev := env.Event.(type) {
	case account.AccountOpened:
		id := ev.AccountID
		view.AccountID = &id
		return nil
	case account.BalanceDeposited:
		amount, err := u.toDisplay(ev.Amount)
		if err != nil {
			return err
		}
		view.Ledger = append(view.Ledger, LedgerEntry{Description: "deposit", Amount: amount})
		view.Balance, _ = view.Balance.Add(amount)
		return nil
	case account.CashWithdrawal:
		amount, err := u.toDisplay(ev.Amount)
		if err != nil {
			return err
		}
		view.Ledger = append(view.Ledger, LedgerEntry{Description: "ATM withdrawal", Amount: amount.Negate()})
		view.Balance, _ = view.Balance.Sub(amount)
		return nil
	case account.CheckWithdrawal:
		amount, err := u.toDisplay(ev.Amount)
		if err != nil {
			return err
		}
		view.Ledger = append(view.Ledger, LedgerEntry{
			Description: fmt.Sprintf("Check %s", ev.CheckNr),
			Amount:      amount.Negate(),
		})
		view.WrittenChecks = append(view.WrittenChecks, ev.CheckNr)
		view.Balance, _ = view.Balance.Sub(amount)
		return nil
	default:
		u.logger.Debug("ignoring non-transactional event",
			"aggregate_id", env.AggregateID, "event_type", env.Event.EventType())
		return nil
	}
}

func (u *Updater) toDisplay(m money.Money) (money.Money, error) {
	if m.Currency == u.display {
		return m, nil
	}
	if u.rates == nil {
		return money.Money{}, fmt.Errorf("%w: no exchange rates available", money.ErrCurrencyMismatch)
	}
	return u.rates.Convert(m, u.display)
}
