// Package transactionservice manages business logic layer of single-account
// transactions: credits, debits, bill payments and the derived history queries.
package transactionservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Repo provides data access layer interface needed by transaction service layer.
type Repo interface {
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error)
	RecordTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo Repo
}

// New returns transaction service struct to manage transaction business logic.
func New(tr Repo) *Service {
	return &Service{repo: tr}
}

// Credit records a balance increase on the given account.
func (s *Service) Credit(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error) {
	return s.record(ctx, username, domain.KindCredit, arg)
}

// Debit records a balance decrease on the given account. It fails with
// domain.InsufficientFundsError when the balance does not cover the amount.
func (s *Service) Debit(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error) {
	return s.record(ctx, username, domain.KindDebit, arg)
}

// PayBill records a bill payment, which decreases the balance like a debit.
func (s *Service) PayBill(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error) {
	return s.record(ctx, username, domain.KindBillPayment, arg)
}

func (s *Service) record(ctx context.Context, username string, kind domain.Kind, arg domain.RecordTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Transaction{}, &domain.InvalidAmountError{Reason: "amount must be a decimal number"}
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Transaction{}, &domain.InvalidAmountError{Reason: "amount must be positive"}
	}

	account, err := s.repo.GetAccount(ctx, arg.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if account.Owner != username {
		l.Warn().Str("username", username).Int32("account_id", account.ID).Msg("owner mismatch")
		return domain.Transaction{}, domain.ErrInvalidOwner
	}

	if arg.Currency != account.Currency {
		return domain.Transaction{}, &domain.CurrencyMismatchError{Given: arg.Currency, Expected: account.Currency}
	}

	// The repository re-runs the account-dependent checks inside its critical
	// section, so a concurrent mutation between the checks above and the write
	// below cannot leave the account inconsistent.
	return s.repo.RecordTransaction(ctx, domain.CreateTransactionParams{
		AccountID:   arg.AccountID,
		Kind:        kind,
		Amount:      amount,
		Currency:    arg.Currency,
		Timestamp:   arg.Timestamp,
		Description: arg.Description,
		Category:    arg.Category,
	})
}

// Statement returns the account's transactions with from <= timestamp <= to,
// ascending by timestamp.
func (s *Service) Statement(ctx context.Context, username string, accountID int32, from, to time.Time) ([]domain.Transaction, error) {
	history, err := s.history(ctx, username, accountID)
	if err != nil {
		return nil, err
	}

	return filterRange(history, from, to), nil
}

// ListByKind returns the statement filtered further by exact kind match.
func (s *Service) ListByKind(ctx context.Context, username string, accountID int32, kind domain.Kind, from, to time.Time) ([]domain.Transaction, error) {
	history, err := s.history(ctx, username, accountID)
	if err != nil {
		return nil, err
	}

	return filterKind(filterRange(history, from, to), kind), nil
}

// BalanceAsOf reconstructs the account balance at the given instant by folding
// the history up to and including it. The fold starts from the account's
// initial balance so that the result agrees with the live balance once the
// whole history is replayed.
func (s *Service) BalanceAsOf(ctx context.Context, username string, accountID int32, at time.Time) (decimal.Decimal, error) {
	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if account.Owner != username {
		return decimal.Decimal{}, domain.ErrInvalidOwner
	}

	history, err := s.repo.ListTransactions(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	balance := account.InitialBalance

	for _, tx := range history {
		if tx.Timestamp.After(at) {
			break
		}

		balance = balance.Add(tx.Signed())
	}

	return balance, nil
}

// Largest returns the transaction with the maximum amount among the account's
// transactions of the given kind within the range. Ties are broken in favor of
// the earliest timestamp. It returns nil without an error when nothing matches.
func (s *Service) Largest(ctx context.Context, username string, accountID int32, kind domain.Kind, from, to time.Time) (*domain.Transaction, error) {
	matched, err := s.ListByKind(ctx, username, accountID, kind, from, to)
	if err != nil {
		return nil, err
	}

	var largest *domain.Transaction

	for i := range matched {
		if largest == nil || matched[i].Amount.GreaterThan(largest.Amount) {
			largest = &matched[i]
		}
	}

	return largest, nil
}

func (s *Service) history(ctx context.Context, username string, accountID int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if account.Owner != username {
		l.Warn().Str("username", username).Int32("account_id", account.ID).Msg("owner mismatch")
		return nil, domain.ErrInvalidOwner
	}

	return s.repo.ListTransactions(ctx, accountID)
}

func filterRange(history []domain.Transaction, from, to time.Time) []domain.Transaction {
	items := []domain.Transaction{}

	for _, tx := range history {
		if tx.Timestamp.Before(from) || tx.Timestamp.After(to) {
			continue
		}

		items = append(items, tx)
	}

	return items
}

func filterKind(history []domain.Transaction, kind domain.Kind) []domain.Transaction {
	items := []domain.Transaction{}

	for _, tx := range history {
		if tx.Kind == kind {
			items = append(items, tx)
		}
	}

	return items
}
