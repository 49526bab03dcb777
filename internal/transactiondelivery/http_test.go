package transactiondelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/accountdelivery"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/currencypkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

var baseTime = time.Date(2022, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("currency", accountdelivery.ValidCurrency); err != nil {
			os.Exit(1)
		}

		if err := v.RegisterValidation("transactionkind", ValidKind); err != nil {
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

func newServer(t *testing.T, service Service, tokenMaker tokenpkg.Maker) *gin.Engine {
	t.Helper()

	handler := NewHandler(service)

	server := gin.New()
	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.POST("/transactions", handler.Create)
	authRoutes.GET("/accounts/:id/statement", handler.Statement)
	authRoutes.GET("/accounts/:id/transactions", handler.ListByKind)
	authRoutes.GET("/accounts/:id/balance-as-of", handler.BalanceAsOf)
	authRoutes.GET("/accounts/:id/transactions/largest", handler.Largest)

	return server
}

func randomTransaction(accountID int32, kind domain.Kind) domain.Transaction {
	return domain.Transaction{
		ID:        1,
		AccountID: accountID,
		Kind:      kind,
		Amount:    decimal.RequireFromString(randompkg.MoneyAmountBetween(1, 100)),
		Currency:  currencypkg.USD,
		Timestamp: baseTime,
	}
}

func TestCreate(t *testing.T) {
	username := randompkg.Owner()
	accountID := int32(1)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	wantArg := domain.RecordTransactionParams{
		AccountID: accountID,
		Amount:    "50",
		Currency:  currencypkg.USD,
		Timestamp: baseTime,
	}

	body := func(kind string) gin.H {
		return gin.H{
			"account_id": accountID,
			"kind":       kind,
			"amount":     "50",
			"currency":   currencypkg.USD,
			"timestamp":  baseTime.Format(time.RFC3339),
		}
	}

	testCases := []struct {
		name           string
		requestBody    gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name:        "OKCredit",
			requestBody: body("CREDIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Credit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(randomTransaction(accountID, domain.KindCredit), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "OKDebit",
			requestBody: body("DEBIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(randomTransaction(accountID, domain.KindDebit), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "OKBillPayment",
			requestBody: body("BILL_PAYMENT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					PayBill(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(randomTransaction(accountID, domain.KindBillPayment), nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "TransferKindRejected",
			requestBody: body("TRANSFER_OUT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "MissingTimestamp",
			requestBody: gin.H{"account_id": accountID, "kind": "CREDIT", "amount": "50", "currency": currencypkg.USD},
			buildStubs: func(service *MockService) {
				service.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "InsufficientFunds",
			requestBody: body("DEBIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Debit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(domain.Transaction{}, &domain.InsufficientFundsError{
						AccountID: accountID,
						Balance:   decimal.RequireFromString("10"),
						Requested: decimal.RequireFromString("50"),
					})
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			name:        "AccountNotFound",
			requestBody: body("CREDIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Credit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(domain.Transaction{}, &domain.AccountNotFoundError{ID: accountID})
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:        "CurrencyMismatch",
			requestBody: body("CREDIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Credit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(domain.Transaction{}, &domain.CurrencyMismatchError{
						Given:    currencypkg.USD,
						Expected: currencypkg.EUR,
					})
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:        "InvalidOwner",
			requestBody: body("CREDIT"),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Credit(gomock.Any(), gomock.Eq(username), gomock.Eq(wantArg)).
					Times(1).
					Return(domain.Transaction{}, domain.ErrInvalidOwner)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newServer(t, service, tokenMaker)

			body, err := json.Marshal(tc.requestBody)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/transactions", bytes.NewReader(body))
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, username, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
		})
	}
}

func rangeQuery(from, to time.Time) url.Values {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))

	return q
}

func TestStatement(t *testing.T) {
	username := randompkg.Owner()
	accountID := int32(1)
	from := baseTime
	to := baseTime.Add(time.Hour)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	transactions := []domain.Transaction{
		randomTransaction(accountID, domain.KindCredit),
	}

	testCases := []struct {
		name           string
		url            string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			url:  fmt.Sprintf("/accounts/%d/statement?%s", accountID, rangeQuery(from, to).Encode()),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Statement(gomock.Any(), gomock.Eq(username), gomock.Eq(accountID),
						gomock.Eq(from), gomock.Eq(to)).
					Times(1).
					Return(transactions, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingRange",
			url:  fmt.Sprintf("/accounts/%d/statement", accountID),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Statement(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			url:  fmt.Sprintf("/accounts/%d/statement?%s", accountID, rangeQuery(from, to).Encode()),
			buildStubs: func(service *MockService) {
				service.EXPECT().
					Statement(gomock.Any(), gomock.Eq(username), gomock.Eq(accountID),
						gomock.Eq(from), gomock.Eq(to)).
					Times(1).
					Return(nil, &domain.AccountNotFoundError{ID: accountID})
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newServer(t, service, tokenMaker)

			request, err := http.NewRequest(http.MethodGet, tc.url, nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, username, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)

			if tc.wantStatusCode == http.StatusOK {
				var res struct {
					Data struct {
						Transactions []domain.Transaction `json:"transactions"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

				if diff := cmp.Diff(transactions, res.Data.Transactions); diff != "" {
					t.Errorf("transactions mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestListByKind(t *testing.T) {
	username := randompkg.Owner()
	accountID := int32(1)
	from := baseTime
	to := baseTime.Add(time.Hour)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	testCases := []struct {
		name           string
		kind           string
		buildStubs     func(service *MockService)
		wantStatusCode int
	}{
		{
			name: "OK",
			kind: "CREDIT",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ListByKind(gomock.Any(), gomock.Eq(username), gomock.Eq(accountID),
						gomock.Eq(domain.KindCredit), gomock.Eq(from), gomock.Eq(to)).
					Times(1).
					Return([]domain.Transaction{}, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "UnknownKind",
			kind: "WITHDRAWAL",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ListByKind(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			server := newServer(t, service, tokenMaker)

			q := rangeQuery(from, to)
			q.Set("kind", tc.kind)

			request, err := http.NewRequest(http.MethodGet,
				fmt.Sprintf("/accounts/%d/transactions?%s", accountID, q.Encode()), nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, username, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatusCode, recorder.Code)
		})
	}
}

func TestBalanceAsOf(t *testing.T) {
	username := randompkg.Owner()
	accountID := int32(1)
	at := baseTime

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := NewMockService(ctrl)
	service.EXPECT().
		BalanceAsOf(gomock.Any(), gomock.Eq(username), gomock.Eq(accountID), gomock.Eq(at)).
		Times(1).
		Return(decimal.RequireFromString("120"), nil)

	server := newServer(t, service, tokenMaker)

	q := url.Values{}
	q.Set("at", at.Format(time.RFC3339))

	request, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("/accounts/%d/balance-as-of?%s", accountID, q.Encode()), nil)
	require.NoError(t, err)

	middleware.AddAuthorization(t, request, tokenMaker,
		middleware.AuthorizationTypeBearer, username, time.Minute)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var res struct {
		Data struct {
			Balance decimal.Decimal `json:"balance"`
			At      time.Time       `json:"at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
	require.True(t, res.Data.Balance.Equal(decimal.RequireFromString("120")))
	require.True(t, res.Data.At.Equal(at))
}

func TestLargest(t *testing.T) {
	username := randompkg.Owner()
	accountID := int32(1)
	from := baseTime
	to := baseTime.Add(time.Hour)

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	largest := randomTransaction(accountID, domain.KindDebit)

	testCases := []struct {
		name       string
		stubResult *domain.Transaction
	}{
		{name: "OK", stubResult: &largest},
		{name: "NoMatchesReturnsNull", stubResult: nil},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			service.EXPECT().
				Largest(gomock.Any(), gomock.Eq(username), gomock.Eq(accountID),
					gomock.Eq(domain.KindDebit), gomock.Eq(from), gomock.Eq(to)).
				Times(1).
				Return(tc.stubResult, nil)

			server := newServer(t, service, tokenMaker)

			q := rangeQuery(from, to)
			q.Set("kind", "DEBIT")

			request, err := http.NewRequest(http.MethodGet,
				fmt.Sprintf("/accounts/%d/transactions/largest?%s", accountID, q.Encode()), nil)
			require.NoError(t, err)

			middleware.AddAuthorization(t, request, tokenMaker,
				middleware.AuthorizationTypeBearer, username, time.Minute)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, http.StatusOK, recorder.Code)

			var res struct {
				Data struct {
					Transaction *domain.Transaction `json:"transaction"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))

			if tc.stubResult == nil {
				require.Nil(t, res.Data.Transaction)
				return
			}

			require.NotNil(t, res.Data.Transaction)
			require.Equal(t, largest.ID, res.Data.Transaction.ID)
			require.True(t, res.Data.Transaction.Amount.Equal(largest.Amount))
		})
	}
}
