// Package webapi exposes the bank account service over HTTP using the Fiber
// web framework. Commands are posted to account sub-resources and queries are
// served from the materialized view.
//
// Routes:
//   - POST /accounts                       : Open a new account.
//   - GET  /accounts/:id                   : Retrieve the account view.
//   - POST /accounts/:id/deposits          : Deposit funds.
//   - POST /accounts/:id/withdrawals/atm   : Withdraw cash at an ATM.
//   - POST /accounts/:id/withdrawals/check : Disburse a check.
//   - POST /accounts/:id/email             : Change the email address.
//   - POST /accounts/:id/address           : Change the mailing address.
package webapi

import (
	"github.com/amirasaad/bankaccount/pkg/cqrs"
	"github.com/amirasaad/bankaccount/pkg/currency"
	"github.com/amirasaad/bankaccount/pkg/domain/account"
	"github.com/amirasaad/bankaccount/pkg/money"
	"github.com/amirasaad/bankaccount/pkg/service/bank"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// AccountRoutes registers the account command and query endpoints.
func AccountRoutes(app *fiber.App, svc *bank.Service) {
	app.Post("/accounts", OpenAccount(svc))
	app.Get("/accounts/:id", GetAccountView(svc))
	app.Post("/accounts/:id/deposits", Deposit(svc))
	app.Post("/accounts/:id/withdrawals/atm", WithdrawCash(svc))
	app.Post("/accounts/:id/withdrawals/check", DisburseCheck(svc))
	app.Post("/accounts/:id/email", ChangeEmail(svc))
	app.Post("/accounts/:id/address", ChangeAddress(svc))
}

// OpenAccount returns a Fiber handler that assigns a fresh account id and
// issues the opening command. The generated id is returned so the client can
// address the account afterwards.
func OpenAccount(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[OpenAccountRequest](c)
		if input == nil {
			return err
		}
		address, err := account.NewMailingAddress(input.MailingAddress)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid mailing address", err.Error())
		}
		email, err := account.NewEmailAddress(input.Email)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid email address", err.Error())
		}
		id := svc.NextAccountID()
		_, err = svc.Execute(c.UserContext(), id, account.OpenAccount{
			AccountID:      id,
			UserName:       input.UserName,
			MailingAddress: address,
			Email:          email,
		})
		if err != nil {
			log.Errorf("Failed to open account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		log.Infof("Account opened: %s", id)
		return SuccessResponseJSON(c, fiber.StatusCreated, "Account opened", OpenAccountResponse{
			AccountID: id.Int64(),
		})
	}
}

// GetAccountView returns a Fiber handler serving the materialized account
// view: balance, written checks and the transaction ledger.
func GetAccountView(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		view, err := svc.View(c.UserContext(), id)
		if err != nil {
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Account view", view)
	}
}

// Deposit returns a Fiber handler that credits the posted amount to the
// account. The currency is optional and defaults to USD.
func Deposit(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := BindAndValidate[DepositRequest](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, input.Currency)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		committed, err := svc.Execute(c.UserContext(), id, account.DepositAmount{Amount: amount})
		if err != nil {
			log.Errorf("Failed to deposit into account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Deposit accepted", CommandResponse{
			AccountID: id.Int64(),
			Sequence:  lastSequence(committed),
		})
	}
}

// WithdrawCash returns a Fiber handler for ATM withdrawals. The funds check
// runs before the ATM is consulted, so an overdraft never dispenses cash.
func WithdrawCash(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := BindAndValidate[CashWithdrawalRequest](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, input.Currency)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		committed, err := svc.Execute(c.UserContext(), id, account.WithdrawCash{
			Amount: amount,
			AtmID:  account.AtmID(input.AtmID),
		})
		if err != nil {
			log.Errorf("Failed to withdraw from account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal accepted", CommandResponse{
			AccountID: id.Int64(),
			Sequence:  lastSequence(committed),
		})
	}
}

// DisburseCheck returns a Fiber handler for check disbursements.
func DisburseCheck(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := BindAndValidate[CheckWithdrawalRequest](c)
		if input == nil {
			return err
		}
		amount, err := parseAmount(input.Amount, input.Currency)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", err.Error())
		}
		committed, err := svc.Execute(c.UserContext(), id, account.DisburseCheck{
			CheckNr: account.CheckNumber(input.CheckNr),
			Amount:  amount,
		})
		if err != nil {
			log.Errorf("Failed to disburse check for account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Check disbursed", CommandResponse{
			AccountID: id.Int64(),
			Sequence:  lastSequence(committed),
		})
	}
}

// ChangeEmail returns a Fiber handler replacing the account's email address.
func ChangeEmail(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := BindAndValidate[ChangeEmailRequest](c)
		if input == nil {
			return err
		}
		email, err := account.NewEmailAddress(input.NewEmail)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid email address", err.Error())
		}
		committed, err := svc.Execute(c.UserContext(), id, account.ChangeEmail{NewEmail: email})
		if err != nil {
			log.Errorf("Failed to change email for account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Email updated", CommandResponse{
			AccountID: id.Int64(),
			Sequence:  lastSequence(committed),
		})
	}
}

// ChangeAddress returns a Fiber handler replacing the account's mailing
// address.
func ChangeAddress(svc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := account.ParseAccountID(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account ID", err.Error())
		}
		input, err := BindAndValidate[ChangeAddressRequest](c)
		if input == nil {
			return err
		}
		address, err := account.NewMailingAddress(input.NewAddress)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid mailing address", err.Error())
		}
		committed, err := svc.Execute(c.UserContext(), id, account.ChangeMailingAddress{NewAddress: address})
		if err != nil {
			log.Errorf("Failed to change address for account %s: %v", id, err)
			return CommandErrorJSON(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Mailing address updated", CommandResponse{
			AccountID: id.Int64(),
			Sequence:  lastSequence(committed),
		})
	}
}

func lastSequence(committed []cqrs.EventEnvelope) int64 {
	if len(committed) == 0 {
		return 0
	}
	return committed[len(committed)-1].Sequence
}

func parseAmount(amount float64, code string) (money.Money, error) {
	cur := currency.DefaultCode
	if code != "" {
		parsed, err := currency.Parse(code)
		if err != nil {
			return money.Money{}, err
		}
		cur = parsed
	}
	return money.NewFromFloat(amount, cur)
}
