// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Repo provides data access layer interface needed by transfer service layer.
type Repo interface {
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	TransferTx(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo Repo
}

// New returns transfer service struct to manage transfer business logic.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

func (s *Service) validRequest(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Decimal{}, &domain.InvalidAmountError{Reason: "amount must be a decimal number"}
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, &domain.InvalidAmountError{Reason: "amount must be positive"}
	}

	if arg.FromAccountID == arg.ToAccountID {
		return decimal.Decimal{}, domain.ErrSameAccountTransfer
	}

	fromAccount, err := s.repo.GetAccount(ctx, arg.FromAccountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if fromAccount.Owner != fromUsername {
		l.Warn().Str("username", fromUsername).Int32("account_id", fromAccount.ID).Msg("owner mismatch")
		return decimal.Decimal{}, domain.ErrInvalidOwner
	}

	if arg.Currency != fromAccount.Currency {
		return decimal.Decimal{}, &domain.CurrencyMismatchError{Given: arg.Currency, Expected: fromAccount.Currency}
	}

	// Both accounts must exist and match the currency before the balance is
	// considered, so a missing destination is never masked as a funds problem.
	toAccount, err := s.repo.GetAccount(ctx, arg.ToAccountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if arg.Currency != toAccount.Currency {
		return decimal.Decimal{}, &domain.CurrencyMismatchError{Given: arg.Currency, Expected: toAccount.Currency}
	}

	if fromAccount.Balance.LessThan(amount) {
		return decimal.Decimal{}, &domain.InsufficientFundsError{
			AccountID: fromAccount.ID,
			Balance:   fromAccount.Balance,
			Requested: amount,
		}
	}

	return amount, nil
}

// Transfer checks if the transfer request is valid and then executes the
// transfer. Both legs are applied by the repository inside one critical
// section, which also re-runs the balance check, so a failure at any point
// leaves both accounts untouched.
func (s *Service) Transfer(ctx context.Context, fromUsername string, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	amount, err := s.validRequest(ctx, fromUsername, arg)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	return s.repo.TransferTx(ctx, domain.TransferTxParams{
		FromAccountID: arg.FromAccountID,
		ToAccountID:   arg.ToAccountID,
		Amount:        amount,
		Currency:      arg.Currency,
		Timestamp:     arg.Timestamp,
		Description:   arg.Description,
	})
}
