// Package transactiondelivery manages delivery layer of single-account
// transactions and history queries.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Credit(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error)
	Debit(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error)
	PayBill(ctx context.Context, username string, arg domain.RecordTransactionParams) (domain.Transaction, error)
	Statement(ctx context.Context, username string, accountID int32, from, to time.Time) ([]domain.Transaction, error)
	ListByKind(ctx context.Context, username string, accountID int32, kind domain.Kind, from, to time.Time) ([]domain.Transaction, error)
	BalanceAsOf(ctx context.Context, username string, accountID int32, at time.Time) (decimal.Decimal, error)
	Largest(ctx context.Context, username string, accountID int32, kind domain.Kind, from, to time.Time) (*domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

// statusFromError maps domain errors to http status codes. Unexpected errors
// map to 500 and their message is masked by the handlers.
func statusFromError(err error) int {
	var (
		notFound         *domain.AccountNotFoundError
		invalidAmount    *domain.InvalidAmountError
		currencyMismatch *domain.CurrencyMismatchError
		insufficient     *domain.InsufficientFundsError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalidAmount), errors.As(err, &currencyMismatch):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOwner):
		return http.StatusUnauthorized
	}

	return http.StatusInternalServerError
}

func abortWithError(gctx *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return "invalid request"
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	AccountID   int32     `json:"account_id" binding:"required,min=1"`
	Kind        string    `json:"kind" binding:"required,oneof=CREDIT DEBIT BILL_PAYMENT"`
	Amount      string    `json:"amount" binding:"required"`
	Currency    string    `json:"currency" binding:"required,currency"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

// Create handles http request to record a credit, debit or bill payment.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	arg := domain.RecordTransactionParams{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Timestamp:   req.Timestamp,
		Description: req.Description,
		Category:    req.Category,
	}

	var (
		tx  domain.Transaction
		err error
	)

	switch domain.Kind(req.Kind) {
	case domain.KindDebit:
		tx, err = h.service.Debit(ctx, authPayload.Username, arg)
	case domain.KindBillPayment:
		tx, err = h.service.PayBill(ctx, authPayload.Username, arg)
	default:
		tx, err = h.service.Credit(ctx, authPayload.Username, arg)
	}

	if err != nil {
		abortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{tx}})
}

type uriRequest struct {
	ID int32 `uri:"id" binding:"required,min=1"`
}

type rangeRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// Statement handles http request to get the account statement for a period.
func (h *Handler) Statement(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req rangeRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.Statement(ctx, authPayload.Username, uri.ID, req.From, req.To)
	if err != nil {
		abortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

type kindRangeRequest struct {
	Kind string    `form:"kind" binding:"required,transactionkind"`
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ListByKind handles http request to get the statement filtered by kind.
func (h *Handler) ListByKind(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req kindRangeRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	transactions, err := h.service.ListByKind(ctx, authPayload.Username, uri.ID, domain.Kind(req.Kind), req.From, req.To)
	if err != nil {
		abortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{transactions}})
}

type asOfRequest struct {
	At time.Time `form:"at" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type balanceData struct {
	Balance decimal.Decimal `json:"balance"`
	At      time.Time       `json:"at"`
}
type balanceResponse struct {
	Data balanceData `json:"data,omitempty"`
}

// BalanceAsOf handles http request to reconstruct a historical balance.
func (h *Handler) BalanceAsOf(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req asOfRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	balance, err := h.service.BalanceAsOf(ctx, authPayload.Username, uri.ID, req.At)
	if err != nil {
		abortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, balanceResponse{Data: balanceData{Balance: balance, At: req.At}})
}

type largestData struct {
	Transaction *domain.Transaction `json:"transaction"`
}
type largestResponse struct {
	Data largestData `json:"data,omitempty"`
}

// Largest handles http request to get the largest transaction of a kind
// within a period. The response carries null when nothing matches.
func (h *Handler) Largest(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri uriRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req kindRangeRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	authPayload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	largest, err := h.service.Largest(ctx, authPayload.Username, uri.ID, domain.Kind(req.Kind), req.From, req.To)
	if err != nil {
		abortWithError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, largestResponse{Data: largestData{largest}})
}
