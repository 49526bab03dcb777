package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferParams is the input data for the transfer transaction.
// Amount arrives as a string and is validated by the transfer service.
type CreateTransferParams struct {
	FromAccountID int32     `json:"from_account_id"`
	ToAccountID   int32     `json:"to_account_id"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
	Description   string    `json:"description"`
}

// TransferTxParams is the validated input for the repository transfer
// transaction.
type TransferTxParams struct {
	FromAccountID int32
	ToAccountID   int32
	Amount        decimal.Decimal
	Currency      string
	Timestamp     time.Time
	Description   string
}

// TransferTxResult is the result of the transfer transaction: both legs and
// both accounts as they stand after the transfer.
type TransferTxResult struct {
	FromAccount Account     `json:"from_account"`
	ToAccount   Account     `json:"to_account"`
	OutEntry    Transaction `json:"out_entry"`
	InEntry     Transaction `json:"in_entry"`
}
