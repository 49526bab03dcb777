package accountservice

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/ledgerrepo"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

func TestOpen(t *testing.T) {
	owner := randompkg.Owner()

	testCases := []struct {
		name           string
		initialBalance string
		wantBalance    string
		wantErr        bool
	}{
		{
			name:           "OK",
			initialBalance: "250.50",
			wantBalance:    "250.50",
		},
		{
			name:           "EmptyDefaultsToZero",
			initialBalance: "",
			wantBalance:    "0",
		},
		{
			name:           "ZeroExplicit",
			initialBalance: "0",
			wantBalance:    "0",
		},
		{
			name:           "NotANumber",
			initialBalance: "ten dollars",
			wantErr:        true,
		},
		{
			name:           "Negative",
			initialBalance: "-1",
			wantErr:        true,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			service := New(ledgerrepo.NewRepoMem())

			account, err := service.Open(context.Background(),
				owner, "main", randompkg.AccountNumber(), currencypkg.USD, tc.initialBalance)

			if tc.wantErr {
				var invalidAmount *domain.InvalidAmountError
				require.ErrorAs(t, err, &invalidAmount)

				return
			}

			require.NoError(t, err)
			require.Equal(t, owner, account.Owner)
			require.Equal(t, currencypkg.USD, account.Currency)
			require.True(t, account.Balance.Equal(decimal.RequireFromString(tc.wantBalance)))
			require.True(t, account.InitialBalance.Equal(account.Balance))
		})
	}
}

func TestGet(t *testing.T) {
	service := New(ledgerrepo.NewRepoMem())
	ctx := context.Background()

	account, err := service.Open(ctx, randompkg.Owner(), "main", randompkg.AccountNumber(), currencypkg.EUR, "15")
	require.NoError(t, err)

	got, err := service.Get(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)
	require.Equal(t, account.Owner, got.Owner)

	_, err = service.Get(ctx, 404)

	var notFound *domain.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetBalance(t *testing.T) {
	service := New(ledgerrepo.NewRepoMem())
	ctx := context.Background()

	owner := randompkg.Owner()

	account, err := service.Open(ctx, owner, "main", randompkg.AccountNumber(), currencypkg.USD, "75.25")
	require.NoError(t, err)

	balance, err := service.GetBalance(ctx, owner, account.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("75.25")))

	_, err = service.GetBalance(ctx, owner, 404)

	var notFound *domain.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = service.GetBalance(ctx, "intruder", account.ID)
	require.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestList(t *testing.T) {
	service := New(ledgerrepo.NewRepoMem())
	ctx := context.Background()

	owner := randompkg.Owner()

	first, err := service.Open(ctx, owner, "main", randompkg.AccountNumber(), currencypkg.USD, "1")
	require.NoError(t, err)

	_, err = service.Open(ctx, randompkg.Owner(), "main", randompkg.AccountNumber(), currencypkg.USD, "1")
	require.NoError(t, err)

	second, err := service.Open(ctx, owner, "main", randompkg.AccountNumber(), currencypkg.EUR, "2")
	require.NoError(t, err)

	accounts, err := service.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Equal(t, first.ID, accounts[0].ID)
	require.Equal(t, second.ID, accounts[1].ID)
}
