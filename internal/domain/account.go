// Package domain provides definitions of all entities.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds balance data for one ledger account. Branch and Number are
// opaque caller-supplied identifiers and are not required to be unique.
// Currency is fixed at creation and never changes.
type Account struct {
	ID             int32           `json:"id"`
	Owner          string          `json:"owner"`
	Branch         string          `json:"branch"`
	Number         string          `json:"number"`
	Currency       string          `json:"currency"`
	Balance        decimal.Decimal `json:"balance"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateAccountParams is the input data to register a new account.
type CreateAccountParams struct {
	Owner          string
	Branch         string
	Number         string
	Currency       string
	InitialBalance decimal.Decimal
}
