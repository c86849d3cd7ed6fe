package webapi

// OpenAccountRequest is the application form for a new account.
type OpenAccountRequest struct {
	UserName       string `json:"user_name" validate:"required,min=1,max=128"`
	MailingAddress string `json:"mailing_address" validate:"required,min=1,max=256"`
	Email          string `json:"email" validate:"required,email"`
}

// DepositRequest is the request body for depositing funds.
type DepositRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
}

// CashWithdrawalRequest is the request body for an ATM withdrawal.
type CashWithdrawalRequest struct {
	AtmID    string  `json:"atm_id" validate:"required,min=1,max=64"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
}

// CheckWithdrawalRequest is the request body for a check disbursement.
type CheckWithdrawalRequest struct {
	CheckNr  uint32  `json:"check_nr" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
}

// ChangeEmailRequest is the request body for an email change.
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// ChangeAddressRequest is the request body for a mailing address change.
type ChangeAddressRequest struct {
	NewAddress string `json:"new_address" validate:"required,min=1,max=256"`
}

// OpenAccountResponse returns the id assigned to a freshly opened account.
type OpenAccountResponse struct {
	AccountID int64 `json:"account_id"`
}

// CommandResponse reports the committed outcome of an accepted command.
type CommandResponse struct {
	AccountID int64 `json:"account_id"`
	Sequence  int64 `json:"sequence"` // sequence of the last committed event
}
