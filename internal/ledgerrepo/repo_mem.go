// Package ledgerrepo manages the in-memory repository layer of the ledger.
//
// RepoMem is the sole owner of all account state. Accounts and histories cross
// the package boundary only as value copies, so invariants (ascending-timestamp
// history, balance consistent with the recorded transactions) cannot be broken
// from outside. A single registry-wide RWMutex serializes every mutation;
// queries read under the shared lock and copy out, so they always observe a
// consistent snapshot and never a half-applied transfer.
package ledgerrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// RepoMem facilitates ledger repository layer logic.
type RepoMem struct {
	mu            sync.RWMutex
	accounts      map[int32]*accountState
	order         []int32
	lastAccountID int32
	lastTxID      int64
}

// accountState pairs an account with its transaction history. The history is
// kept non-decreasing by timestamp at all times; equal timestamps keep
// insertion order.
type accountState struct {
	account domain.Account
	history []domain.Transaction
}

// NewRepoMem returns an empty ledger registry.
func NewRepoMem() *RepoMem {
	return &RepoMem{
		accounts: make(map[int32]*accountState),
	}
}

// CreateAccount registers a new account and returns it. Input validation
// happens upstream in the service layer.
func (r *RepoMem) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastAccountID++

	a := domain.Account{
		ID:             r.lastAccountID,
		Owner:          arg.Owner,
		Branch:         arg.Branch,
		Number:         arg.Number,
		Currency:       arg.Currency,
		Balance:        arg.InitialBalance,
		InitialBalance: arg.InitialBalance,
		CreatedAt:      time.Now().UTC(),
	}

	r.accounts[a.ID] = &accountState{account: a}
	r.order = append(r.order, a.ID)

	return a, nil
}

// GetAccount returns a snapshot of the account with the given id.
func (r *RepoMem) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, err := r.get(id)
	if err != nil {
		return domain.Account{}, err
	}

	return st.account, nil
}

// ListAccounts returns snapshots of the owner's accounts in creation order.
func (r *RepoMem) ListAccounts(ctx context.Context, owner string) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []domain.Account{}

	for _, id := range r.order {
		st := r.accounts[id]
		if st.account.Owner == owner {
			items = append(items, st.account)
		}
	}

	return items, nil
}

// ListTransactions returns a copy of the account's full history in ascending
// timestamp order.
func (r *RepoMem) ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, err := r.get(accountID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Transaction, len(st.history))
	copy(items, st.history)

	return items, nil
}

// RecordTransaction validates and records a single transaction. The check and
// the mutation run inside one critical section: either the transaction is
// appended and the balance updated exactly once, or nothing changes.
func (r *RepoMem) RecordTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.get(arg.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := validate(st.account, arg.Amount, arg.Currency); err != nil {
		return domain.Transaction{}, err
	}

	if !arg.Kind.Inflow() && st.account.Balance.LessThan(arg.Amount) {
		return domain.Transaction{}, &domain.InsufficientFundsError{
			AccountID: st.account.ID,
			Balance:   st.account.Balance,
			Requested: arg.Amount,
		}
	}

	return r.apply(st, arg), nil
}

// TransferTx moves money between two accounts inside a single critical
// section: it records a TRANSFER_OUT leg on the source and a TRANSFER_IN leg
// on the destination, or, if any check fails, touches neither account.
func (r *RepoMem) TransferTx(ctx context.Context, arg domain.TransferTxParams) (domain.TransferTxResult, error) {
	var result domain.TransferTxResult

	if arg.FromAccountID == arg.ToAccountID {
		return result, domain.ErrSameAccountTransfer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The source account is reported first when both ids are unknown.
	from, err := r.get(arg.FromAccountID)
	if err != nil {
		return result, err
	}

	to, err := r.get(arg.ToAccountID)
	if err != nil {
		return result, err
	}

	if err := validate(from.account, arg.Amount, arg.Currency); err != nil {
		return result, err
	}

	if err := validate(to.account, arg.Amount, arg.Currency); err != nil {
		return result, err
	}

	if from.account.Balance.LessThan(arg.Amount) {
		return result, &domain.InsufficientFundsError{
			AccountID: from.account.ID,
			Balance:   from.account.Balance,
			Requested: arg.Amount,
		}
	}

	result.OutEntry = r.apply(from, domain.CreateTransactionParams{
		AccountID:    from.account.ID,
		Kind:         domain.KindTransferOut,
		Amount:       arg.Amount,
		Currency:     arg.Currency,
		Timestamp:    arg.Timestamp,
		Description:  arg.Description,
		Counterparty: to.account.ID,
	})

	result.InEntry = r.apply(to, domain.CreateTransactionParams{
		AccountID:    to.account.ID,
		Kind:         domain.KindTransferIn,
		Amount:       arg.Amount,
		Currency:     arg.Currency,
		Timestamp:    arg.Timestamp,
		Description:  arg.Description,
		Counterparty: from.account.ID,
	})

	result.FromAccount = from.account
	result.ToAccount = to.account

	return result, nil
}

// get returns the live account state. Callers must hold the lock.
func (r *RepoMem) get(id int32) (*accountState, error) {
	st, ok := r.accounts[id]
	if !ok {
		return nil, &domain.AccountNotFoundError{ID: id}
	}

	return st, nil
}

// validate is the shared side-effect-free pre-check for every mutation.
func validate(a domain.Account, amount decimal.Decimal, currency string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &domain.InvalidAmountError{Reason: "amount must be positive"}
	}

	if currency != a.Currency {
		return &domain.CurrencyMismatchError{Given: currency, Expected: a.Currency}
	}

	return nil
}

// apply assigns the next transaction id, inserts the transaction into the
// history keeping it sorted by timestamp, and adjusts the cached balance.
// Callers must hold the write lock; validation happened before.
func (r *RepoMem) apply(st *accountState, arg domain.CreateTransactionParams) domain.Transaction {
	r.lastTxID++

	tx := domain.Transaction{
		ID:           r.lastTxID,
		AccountID:    arg.AccountID,
		Kind:         arg.Kind,
		Amount:       arg.Amount,
		Currency:     arg.Currency,
		Timestamp:    arg.Timestamp,
		Description:  arg.Description,
		Category:     arg.Category,
		Counterparty: arg.Counterparty,
	}

	// A backdated transaction is re-sorted into place; equal timestamps keep
	// insertion order.
	idx := sort.Search(len(st.history), func(i int) bool {
		return st.history[i].Timestamp.After(tx.Timestamp)
	})

	st.history = append(st.history, domain.Transaction{})
	copy(st.history[idx+1:], st.history[idx:])
	st.history[idx] = tx

	st.account.Balance = st.account.Balance.Add(tx.Signed())

	return tx
}
