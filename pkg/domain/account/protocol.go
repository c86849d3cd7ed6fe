package account

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/bankaccount/pkg/money"
)

// EventVersion is the protocol version persisted alongside every event.
const EventVersion = "1.0"

// Command is the closed set of intents an account can be asked to process.
type Command interface {
	// CommandType returns a stable name used in rejection messages and logs.
	CommandType() string
	isCommand()
}

// OpenAccount opens a new account in the Quiescent state.
type OpenAccount struct {
	AccountID      AccountID
	UserName       string
	MailingAddress MailingAddress
	Email          EmailAddress
}

// DepositAmount adds funds to an active account.
type DepositAmount struct {
	Amount money.Money
}

// WithdrawCash withdraws funds through an ATM.
type WithdrawCash struct {
	Amount money.Money
	AtmID  AtmID
}

// DisburseCheck writes a check against the account.
type DisburseCheck struct {
	CheckNr CheckNumber
	Amount  money.Money
}

// ChangeMailingAddress replaces the account's mailing address.
type ChangeMailingAddress struct {
	NewAddress MailingAddress
}

// ChangeEmail replaces the account's email address.
type ChangeEmail struct {
	NewEmail EmailAddress
}

func (OpenAccount) CommandType() string          { return "open_account" }
func (DepositAmount) CommandType() string        { return "deposit_amount" }
func (WithdrawCash) CommandType() string         { return "withdraw_cash" }
func (DisburseCheck) CommandType() string        { return "disburse_check" }
func (ChangeMailingAddress) CommandType() string { return "change_mailing_address" }
func (ChangeEmail) CommandType() string          { return "change_email" }

func (OpenAccount) isCommand()          {}
func (DepositAmount) isCommand()        {}
func (WithdrawCash) isCommand()         {}
func (DisburseCheck) isCommand()        {}
func (ChangeMailingAddress) isCommand() {}
func (ChangeEmail) isCommand()         {}

// Event is the closed set of facts an account can record. State is always
// derived by folding events; they are the only source of truth.
type Event interface {
	// EventType returns the stable type tag persisted with the event.
	EventType() string
	// EventVersion returns the protocol version of the event payload.
	EventVersion() string
	isEvent()
}

// AccountOpened records the creation of an account.
type AccountOpened struct {
	AccountID      AccountID      `json:"account_id"`
	UserName       string         `json:"user_name"`
	MailingAddress MailingAddress `json:"mailing_address"`
	Email          EmailAddress   `json:"email"`
}

// BalanceDeposited records a deposit.
type BalanceDeposited struct {
	Amount money.Money `json:"amount"`
}

// CashWithdrawal records an ATM withdrawal.
type CashWithdrawal struct {
	Amount money.Money `json:"amount"`
}

// CheckWithdrawal records a check disbursement.
type CheckWithdrawal struct {
	CheckNr CheckNumber `json:"check_nr"`
	Amount  money.Money `json:"amount"`
}

// MailingAddressUpdated records a mailing address change.
type MailingAddressUpdated struct {
	NewAddress MailingAddress `json:"new_address"`
}

// EmailUpdated records an email change.
type EmailUpdated struct {
	NewEmail EmailAddress `json:"new_email"`
}

func (AccountOpened) EventType() string         { return "account_opened" }
func (BalanceDeposited) EventType() string      { return "balance_deposited" }
func (CashWithdrawal) EventType() string        { return "cash_withdrawal" }
func (CheckWithdrawal) EventType() string       { return "check_withdrawal" }
func (MailingAddressUpdated) EventType() string { return "mailing_address_updated" }
func (EmailUpdated) EventType() string          { return "email_updated" }

func (AccountOpened) EventVersion() string         { return EventVersion }
func (BalanceDeposited) EventVersion() string      { return EventVersion }
func (CashWithdrawal) EventVersion() string        { return EventVersion }
func (CheckWithdrawal) EventVersion() string       { return EventVersion }
func (MailingAddressUpdated) EventVersion() string { return EventVersion }
func (EmailUpdated) EventVersion() string          { return EventVersion }

func (AccountOpened) isEvent()         {}
func (BalanceDeposited) isEvent()      {}
func (CashWithdrawal) isEvent()        {}
func (CheckWithdrawal) isEvent()       {}
func (MailingAddressUpdated) isEvent() {}
func (EmailUpdated) isEvent()          {}

// variants maps the persisted type tag of each event to its payload envelope
// key and a decoder. Payloads are stored as a single-key JSON object, keyed
// by the event variant name, for forward-compatible deserialization.
var variants = map[string]struct {
	name   string
	decode func(raw json.RawMessage) (Event, error)
}{
	"account_opened": {"AccountOpened", func(raw json.RawMessage) (Event, error) {
		var ev AccountOpened
		return ev, json.Unmarshal(raw, &ev)
	}},
	"balance_deposited": {"BalanceDeposited", func(raw json.RawMessage) (Event, error) {
		var ev BalanceDeposited
		return ev, json.Unmarshal(raw, &ev)
	}},
	"cash_withdrawal": {"CashWithdrawal", func(raw json.RawMessage) (Event, error) {
		var ev CashWithdrawal
		return ev, json.Unmarshal(raw, &ev)
	}},
	"check_withdrawal": {"CheckWithdrawal", func(raw json.RawMessage) (Event, error) {
		var ev CheckWithdrawal
		return ev, json.Unmarshal(raw, &ev)
	}},
	"mailing_address_updated": {"MailingAddressUpdated", func(raw json.RawMessage) (Event, error) {
		var ev MailingAddressUpdated
		return ev, json.Unmarshal(raw, &ev)
	}},
	"email_updated": {"EmailUpdated", func(raw json.RawMessage) (Event, error) {
		var ev EmailUpdated
		return ev, json.Unmarshal(raw, &ev)
	}},
}

// MarshalEvent serializes an event into its persisted payload form.
func MarshalEvent(ev Event) ([]byte, error) {
	variant, ok := variants[ev.EventType()]
	if !ok {
		return nil, fmt.Errorf("unknown account event %T", ev)
	}
	return json.Marshal(map[string]Event{variant.name: ev})
}

// UnmarshalEvent deserializes a persisted payload back into an event, using
// the stored type tag to select the variant.
func UnmarshalEvent(eventType string, payload []byte) (Event, error) {
	variant, ok := variants[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown account event type %q", eventType)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	raw, ok := envelope[variant.name]
	if !ok {
		return nil, fmt.Errorf("event payload missing %q variant", variant.name)
	}
	ev, err := variant.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}
	return ev, nil
}
