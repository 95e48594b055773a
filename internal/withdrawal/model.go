// File: internal/withdrawal/model.go
package withdrawal

import "time"

// Exchange rules for cashing coins out.
const (
	CoinsPerDollar     = 20
	MinWithdrawalCoins = 200
)

// Status of a withdrawal request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Withdrawal is a worker's request to cash coins out through a payment
// system.
type Withdrawal struct {
	ID               string    `json:"id"`
	WorkerEmail      string    `json:"worker_email"`
	WorkerName       string    `json:"worker_name,omitempty"`
	WithdrawalCoins  int       `json:"withdrawal_coins"`
	WithdrawalAmount float64   `json:"withdrawal_amount"`
	PaymentSystem    string    `json:"payment_system"`
	AccountNumber    string    `json:"account_number"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// CreateWithdrawalRequest is the worker's cash-out form. The dollar amount
// is derived server-side from the coin count, never taken from the form.
type CreateWithdrawalRequest struct {
	WithdrawalCoins int    `json:"withdrawal_coins" binding:"required,gt=0"`
	PaymentSystem   string `json:"payment_system" binding:"required,oneof=bkash rocket nagad upay"`
	AccountNumber   string `json:"account_number" binding:"required"`
}

// AmountForCoins converts a coin count to its dollar value.
func AmountForCoins(coins int) float64 {
	return float64(coins) / CoinsPerDollar
}
