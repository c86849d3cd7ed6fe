// Package account implements the event-sourced bank account aggregate: the
// command/event protocol, the value objects, and the state machine deciding
// which commands are legal in which state.
//
// The aggregate is pure decision logic. Given current state and a command it
// produces events or rejects; given current state and an event it produces
// the next state. Durability, optimistic concurrency, and read models are
// collaborators layered on top (pkg/cqrs, pkg/query).
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/money"
)

// AggregateType is the aggregate type tag persisted with every event record.
const AggregateType = "account"

// RuleService authorizes ATM withdrawals and check disbursements.
// Implementations are swappable; see pkg/service/rules.
type RuleService interface {
	ValidateATMWithdrawal(ctx context.Context, atmID AtmID, amount money.Money) error
	ValidateCheck(ctx context.Context, accountID AccountID, checkNr CheckNumber) error
}

// Converter exchanges money into another currency using the shared read-only
// rate table. *exchange.Table satisfies it.
type Converter interface {
	Convert(m money.Money, to currency.Code) (money.Money, error)
}

// Status names the three mutually exclusive account states.
type Status string

// Account lifecycle states.
const (
	StatusQuiescent Status = "quiescent"
	StatusActive    Status = "active"
	StatusClosed    Status = "closed"
)

// state is the closed sum type behind the aggregate. Each variant decides
// command legality and event application for itself.
type state interface {
	handle(ctx context.Context, a *Account, cmd Command, svc RuleService) ([]Event, error)
	// apply returns the successor state, or ok=false for an event the
	// variant does not recognize, which is a no-op transition.
	apply(a *Account, ev Event) (state, bool)
}

// Account is the aggregate root for one bank account. The zero value of the
// state machine is Quiescent; current state is always derived by folding the
// committed event stream.
type Account struct {
	state   state
	convert Converter
	logger  *slog.Logger
}

// New returns an account in the Quiescent state. The converter may be nil,
// in which case only same-currency amounts are accepted.
func New(convert Converter, logger *slog.Logger) *Account {
	if logger == nil {
		logger = slog.Default()
	}
	return &Account{state: quiescent{}, convert: convert, logger: logger}
}

// Handle validates a command against the current state and returns the
// events it produces. Validation failures return a typed error and zero
// events; no partial effects are possible.
func (a *Account) Handle(ctx context.Context, cmd Command, svc RuleService) ([]Event, error) {
	return a.state.handle(ctx, a, cmd, svc)
}

// Apply folds one committed event into the current state. Events not
// recognized by the current state are logged and ignored.
func (a *Account) Apply(ev Event) {
	if next, ok := a.state.apply(a, ev); ok {
		a.state = next
	}
}

// Replay folds a committed event history, in order, from the current state.
func (a *Account) Replay(events []Event) {
	for _, ev := range events {
		a.Apply(ev)
	}
}

// Status reports which of the three states the account is in.
func (a *Account) Status() Status {
	switch a.state.(type) {
	case active:
		return StatusActive
	case closed:
		return StatusClosed
	default:
		return StatusQuiescent
	}
}

// ID returns the account id, if the account has been opened.
func (a *Account) ID() (AccountID, bool) {
	switch s := a.state.(type) {
	case active:
		return s.accountID, true
	case closed:
		return s.accountID, true
	default:
		return 0, false
	}
}

// Balance returns the authoritative balance of an active account.
func (a *Account) Balance() (money.Money, bool) {
	if s, ok := a.state.(active); ok {
		return s.balance, true
	}
	return money.Money{}, false
}

// Email returns the registered email of an opened account.
func (a *Account) Email() (EmailAddress, bool) {
	switch s := a.state.(type) {
	case active:
		return s.email, true
	case closed:
		return s.email, true
	default:
		return "", false
	}
}

// MailingAddress returns the registered mailing address of an opened account.
func (a *Account) MailingAddress() (MailingAddress, bool) {
	switch s := a.state.(type) {
	case active:
		return s.mailingAddress, true
	case closed:
		return s.mailingAddress, true
	default:
		return "", false
	}
}

// convertTo exchanges an amount into the target currency via the shared rate
// table, a no-op when the currencies already match.
func (a *Account) convertTo(m money.Money, to currency.Code) (money.Money, error) {
	if m.Currency == to {
		return m, nil
	}
	if a.convert == nil {
		return money.Money{}, fmt.Errorf("%w: no exchange rates available", money.ErrCurrencyMismatch)
	}
	return a.convert.Convert(m, to)
}

// quiescent is the initial state: no account exists yet.
type quiescent struct{}

func (quiescent) handle(_ context.Context, _ *Account, cmd Command, _ RuleService) ([]Event, error) {
	switch c := cmd.(type) {
	case OpenAccount:
		return []Event{AccountOpened{
			AccountID:      c.AccountID,
			UserName:       c.UserName,
			MailingAddress: c.MailingAddress,
			Email:          c.Email,
		}}, nil
	default:
		return nil, &RejectedCommandError{
			Reason: fmt.Sprintf("unopened account cannot process command: %s", cmd.CommandType()),
		}
	}
}

func (quiescent) apply(a *Account, ev Event) (state, bool) {
	switch e := ev.(type) {
	case AccountOpened:
		return active{
			accountID:      e.AccountID,
			userName:       e.UserName,
			balance:        money.Zero(currency.DefaultCode),
			mailingAddress: e.MailingAddress,
			email:          e.Email,
		}, true
	default:
		a.logger.Warn("unrecognized bank account event -- ignored", "event_type", ev.EventType())
		return nil, false
	}
}

// active is an open account able to transact.
type active struct {
	accountID      AccountID
	userName       string
	balance        money.Money
	mailingAddress MailingAddress
	email          EmailAddress
}

func (s active) handle(ctx context.Context, a *Account, cmd Command, svc RuleService) ([]Event, error) {
	switch c := cmd.(type) {
	case OpenAccount:
		return nil, &RejectedCommandError{
			Reason: fmt.Sprintf("active account %s cannot be reopened", s.accountID),
		}
	case DepositAmount:
		return []Event{BalanceDeposited{Amount: c.Amount}}, nil
	case WithdrawCash:
		return s.handleCashWithdrawal(ctx, a, c.Amount, c.AtmID, svc)
	case DisburseCheck:
		return s.handleCheckDisbursement(ctx, a, c.CheckNr, c.Amount, svc)
	case ChangeMailingAddress:
		return []Event{MailingAddressUpdated{NewAddress: c.NewAddress}}, nil
	case ChangeEmail:
		return []Event{EmailUpdated{NewEmail: c.NewEmail}}, nil
	default:
		return nil, &RejectedCommandError{
			Reason: fmt.Sprintf("active account cannot process command: %s", cmd.CommandType()),
		}
	}
}

func (s active) handleCashWithdrawal(
	ctx context.Context,
	a *Account,
	amount money.Money,
	atmID AtmID,
	svc RuleService,
) ([]Event, error) {
	remaining, err := s.checkFundsAvailable(a, amount)
	if err != nil {
		return nil, err
	}
	if err := svc.ValidateATMWithdrawal(ctx, atmID, amount); err != nil {
		return nil, err
	}
	a.logger.Debug("cash withdrawal authorized",
		"account_id", s.accountID, "atm_id", atmID, "remaining_balance", remaining)
	return []Event{CashWithdrawal{Amount: amount}}, nil
}

func (s active) handleCheckDisbursement(
	ctx context.Context,
	a *Account,
	checkNr CheckNumber,
	amount money.Money,
	svc RuleService,
) ([]Event, error) {
	remaining, err := s.checkFundsAvailable(a, amount)
	if err != nil {
		return nil, err
	}
	if err := svc.ValidateCheck(ctx, s.accountID, checkNr); err != nil {
		return nil, err
	}
	a.logger.Debug("check disbursement authorized",
		"account_id", s.accountID, "check_nr", checkNr, "remaining_balance", remaining)
	return []Event{CheckWithdrawal{CheckNr: checkNr, Amount: amount}}, nil
}

// checkFundsAvailable verifies the drawdown leaves a non-negative balance in
// the account's home currency. It runs before any rule-service call so an
// overdraw is rejected without the cost of an external validation.
func (s active) checkFundsAvailable(a *Account, amount money.Money) (money.Money, error) {
	converted, err := a.convertTo(amount, s.balance.Currency)
	if err != nil {
		return money.Money{}, &RejectedCommandError{Reason: err.Error()}
	}
	remaining, err := s.balance.Sub(converted)
	if err != nil {
		return money.Money{}, &RejectedCommandError{Reason: err.Error()}
	}
	if remaining.IsNegative() {
		return money.Money{}, &InsufficientFundsError{AccountID: s.accountID, Amount: amount}
	}
	return remaining, nil
}

func (s active) apply(a *Account, ev Event) (state, bool) {
	switch e := ev.(type) {
	case BalanceDeposited:
		converted, err := a.convertTo(e.Amount, s.balance.Currency)
		if err != nil {
			a.logger.Warn("cannot convert deposited amount -- ignored",
				"account_id", s.accountID, "amount", e.Amount, "error", err)
			return nil, false
		}
		updated := s
		updated.balance, _ = s.balance.Add(converted)
		return updated, true
	case CashWithdrawal:
		return s.applyDrawdown(a, e.Amount)
	case CheckWithdrawal:
		return s.applyDrawdown(a, e.Amount)
	case MailingAddressUpdated:
		updated := s
		updated.mailingAddress = e.NewAddress
		return updated, true
	case EmailUpdated:
		updated := s
		updated.email = e.NewEmail
		return updated, true
	default:
		a.logger.Warn("unrecognized bank account event -- ignored",
			"account_id", s.accountID, "event_type", ev.EventType())
		return nil, false
	}
}

// applyDrawdown subtracts unconditionally: the funds check happened at
// command time, and replay trusts the committed stream even if it would go
// negative.
func (s active) applyDrawdown(a *Account, amount money.Money) (state, bool) {
	converted, err := a.convertTo(amount, s.balance.Currency)
	if err != nil {
		a.logger.Warn("cannot convert withdrawn amount -- ignored",
			"account_id", s.accountID, "amount", amount, "error", err)
		return nil, false
	}
	updated := s
	updated.balance, _ = s.balance.Sub(converted)
	return updated, true
}

// closed is the terminal state. It is reachable in the model although no
// command in the current protocol produces the closing event.
type closed struct {
	accountID      AccountID
	userName       string
	mailingAddress MailingAddress
	email          EmailAddress
}

func (s closed) handle(_ context.Context, _ *Account, cmd Command, _ RuleService) ([]Event, error) {
	return nil, &RejectedCommandError{
		Reason: fmt.Sprintf("closed account will not accept command: %s", cmd.CommandType()),
	}
}

func (s closed) apply(a *Account, ev Event) (state, bool) {
	a.logger.Warn("no events possible in dead-end closed account state",
		"account_id", s.accountID, "event_type", ev.EventType())
	return nil, false
}
