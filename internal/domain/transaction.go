package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the supported transaction kinds.
type Kind string

// Constants for all supported transaction kinds.
const (
	KindCredit      Kind = "CREDIT"
	KindDebit       Kind = "DEBIT"
	KindTransferOut Kind = "TRANSFER_OUT"
	KindTransferIn  Kind = "TRANSFER_IN"
	KindBillPayment Kind = "BILL_PAYMENT"
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCredit, KindDebit, KindTransferOut, KindTransferIn, KindBillPayment:
		return true
	}

	return false
}

// Inflow reports whether the kind increases the account balance.
func (k Kind) Inflow() bool {
	return k == KindCredit || k == KindTransferIn
}

// Transaction holds one immutable ledger event. Amount is always positive;
// the direction of the balance change is determined by Kind. Timestamp is
// caller-supplied, so a transaction may be recorded out of insertion order.
// Counterparty is the other account of a transfer and zero otherwise.
type Transaction struct {
	ID           int64           `json:"id"`
	AccountID    int32           `json:"account_id"`
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Counterparty int32           `json:"counterparty_account_id,omitempty"`
}

// Signed returns the amount with the sign implied by the transaction kind.
func (tx Transaction) Signed() decimal.Decimal {
	if tx.Kind.Inflow() {
		return tx.Amount
	}

	return tx.Amount.Neg()
}

// RecordTransactionParams is the caller input for credit, debit and bill
// payment operations. Amount arrives as a string and is validated by the
// transaction service. Timestamp is caller-supplied; backdating is allowed.
type RecordTransactionParams struct {
	AccountID   int32     `json:"account_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

// CreateTransactionParams is the validated input for recording a single
// transaction in the repository.
type CreateTransactionParams struct {
	AccountID    int32
	Kind         Kind
	Amount       decimal.Decimal
	Currency     string
	Timestamp    time.Time
	Description  string
	Category     string
	Counterparty int32
}
