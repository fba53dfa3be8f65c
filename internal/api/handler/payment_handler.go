package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/ports"
)

// PaymentHandler covers the payment handshake and rider wallet endpoints.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

type paymentIntentRequest struct {
	TrackingID string `json:"tracking_id" validate:"required"`
}

type confirmPaymentRequest struct {
	TrackingID    string `json:"tracking_id"    validate:"required"`
	TransactionID string `json:"transaction_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type creditEarningsRequest struct {
	TrackingID string `json:"tracking_id" validate:"required"`
}

type cashOutRequest struct {
	Amount  int64  `json:"amount"  validate:"required,gt=0"`
	Method  string `json:"method"  validate:"required,oneof=bkash nagad rocket bank"`
	Account string `json:"account" validate:"required"`
}

// Intent handles POST /v1/payments/intent — starts the payment handshake for
// an unpaid parcel owned by the caller.
//
// @Summary      Create a payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentIntentRequest  true  "Parcel to pay for"
// @Success      201   {object}  domain.PaymentIntent
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/payments/intent [post]
func (h *PaymentHandler) Intent(c echo.Context) error {
	var req paymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	intent, err := h.service.CreateIntent(c.Request().Context(), req.TrackingID, email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, intent)
}

// Confirm handles POST /v1/payments/confirm — records a processor
// confirmation and marks the parcel paid. Replays with the same transaction
// id are idempotent.
//
// @Summary      Confirm a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      confirmPaymentRequest  true  "Processor confirmation"
// @Success      200   {object}  domain.Payment
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/payments/confirm [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req confirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payment, err := h.service.Confirm(c.Request().Context(), ports.ConfirmPaymentInput{
		TrackingID:    req.TrackingID,
		TransactionID: req.TransactionID,
		PaymentMethod: req.PaymentMethod,
		Email:         email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// History handles GET /v1/payments — the caller's payment history; admins see
// every recorded payment.
//
// @Summary      Payment history
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Payment
// @Router       /v1/payments [get]
func (h *PaymentHandler) History(c echo.Context) error {
	role, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	payments, err := h.service.History(c.Request().Context(), email, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// Wallet handles GET /v1/wallet — the rider's earnings ledger.
//
// @Summary      Get the rider's wallet
// @Tags         wallet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Wallet
// @Router       /v1/wallet [get]
func (h *PaymentHandler) Wallet(c echo.Context) error {
	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	wallet, err := h.service.Wallet(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wallet)
}

// Earnings handles POST /v1/wallet/earnings — the assigned rider claims the
// payout for a delivered parcel.
//
// @Summary      Credit delivery earnings
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      creditEarningsRequest  true  "Delivered parcel"
// @Success      200   {object}  domain.Wallet
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/wallet/earnings [post]
func (h *PaymentHandler) Earnings(c echo.Context) error {
	var req creditEarningsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	wallet, err := h.service.CreditEarnings(c.Request().Context(), req.TrackingID, email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wallet)
}

// CashOut handles POST /v1/wallet/cash-out — a rider withdraws from their
// available balance.
//
// @Summary      Cash out wallet balance
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cashOutRequest  true  "Withdrawal details"
// @Success      200   {object}  domain.Wallet
// @Failure      422   {object}  errorResponse
// @Router       /v1/wallet/cash-out [post]
func (h *PaymentHandler) CashOut(c echo.Context) error {
	var req cashOutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, email, err := ctxClaims(c)
	if err != nil {
		return err
	}

	wallet, err := h.service.CashOut(c.Request().Context(), ports.CashOutInput{
		RiderEmail: email,
		Amount:     req.Amount,
		Method:     req.Method,
		Account:    req.Account,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wallet)
}
