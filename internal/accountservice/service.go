// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
type Repo interface {
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	ListAccounts(ctx context.Context, owner string) ([]domain.Account, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Open creates and returns an account for the given owner and currency.
// The initial balance defaults to zero when the argument is empty.
func (s *Service) Open(ctx context.Context, owner, branch, number, currency, initialBalance string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	initial := decimal.Zero

	if initialBalance != "" {
		var err error

		initial, err = decimal.NewFromString(initialBalance)
		if err != nil {
			l.Info().Err(err).Send()
			return domain.Account{}, &domain.InvalidAmountError{Reason: "initial balance must be a decimal number"}
		}
	}

	if initial.IsNegative() {
		return domain.Account{}, &domain.InvalidAmountError{Reason: "initial balance must not be negative"}
	}

	arg := domain.CreateAccountParams{
		Owner:          owner,
		Branch:         branch,
		Number:         number,
		Currency:       currency,
		InitialBalance: initial,
	}

	return s.repo.CreateAccount(ctx, arg)
}

// Get returns the account for the given account ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// GetBalance returns the current balance of the account if it is owned by the
// given user.
func (s *Service) GetBalance(ctx context.Context, username string, id int32) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if account.Owner != username {
		l.Warn().Str("username", username).Int32("account_id", account.ID).Msg("owner mismatch")
		return decimal.Decimal{}, domain.ErrInvalidOwner
	}

	return account.Balance, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx, owner)
}
