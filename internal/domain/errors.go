package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrSameAccountTransfer indicates a transfer whose source and destination are the same account.
	ErrSameAccountTransfer = errors.New("transfer source and destination accounts are the same")
	// ErrInvalidOwner indicates that the user is unauthorized to operate on the account.
	ErrInvalidOwner = errors.New("unauthorized owner")
)

// AccountNotFoundError indicates that no account is registered under the given id.
type AccountNotFoundError struct {
	ID int32
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %d not found", e.ID)
}

// InvalidAmountError indicates a zero, negative or unparsable amount.
type InvalidAmountError struct {
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %s", e.Reason)
}

// CurrencyMismatchError indicates that the given currency differs from the
// account's fixed currency.
type CurrencyMismatchError struct {
	Given    string
	Expected string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: got %s, account currency is %s", e.Given, e.Expected)
}

// InsufficientFundsError indicates that the account balance does not cover the
// requested amount.
type InsufficientFundsError struct {
	AccountID int32
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %d: balance %s, requested %s",
		e.AccountID, e.Balance, e.Requested)
}
