package handlers

import (
	"errors"
	"net/http"
	"strconv"

	request "payment_service/internal/adapter/http/dto/request"
	response "payment_service/internal/adapter/http/dto/response"
	"payment_service/internal/usecase"
	"payment_service/pkg"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
)

// PaymentHandler handles HTTP requests for payments.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// ValidatePayment godoc
// @Summary      Validate card data
// @Description  Runs the card checks without storing a payment.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      request.PaymentRequest  true  "Card data"
// @Success      200      {object}  response.PaymentResult
// @Failure      400      {object}  response.PaymentResult
// @Router       /payments/validate [post]
func (h *PaymentHandler) ValidatePayment(c *gin.Context) {
	var payload request.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	res := h.usecase.Validate(c.Request.Context(), payload.ToInput())
	if !res.Overall.Valid {
		c.JSON(http.StatusBadRequest, response.NewPaymentResult("Payment validation failed", nil, &res))
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment validation successful", nil, &res))
}

// CreatePayment godoc
// @Summary      Create a payment
// @Description  Stores a payment. With card data the card is validated first and a failed validation returns 400 with the stored record.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      request.PaymentRequest  true  "Payment"
// @Success      201      {object}  response.PaymentResult
// @Failure      400      {object}  response.PaymentResult
// @Failure      500      {object}  pkg.HTTPError
// @Router       /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	created, validation, err := h.usecase.Create(c.Request.Context(), payload.ToInput())
	if err != nil {
		h.writeError(c, err)
		return
	}

	switch {
	case validation == nil:
		c.JSON(http.StatusCreated, response.NewPaymentResult("Payment created", &created, nil))
	case validation.Overall.Valid:
		c.JSON(http.StatusCreated, response.NewPaymentResult("Payment created and validated", &created, validation))
	default:
		c.JSON(http.StatusBadRequest, response.NewPaymentResult("Payment validation failed", &created, validation))
	}
}

// GetPayment godoc
// @Summary  Get a payment by id
// @Tags     payments
// @Produce  json
// @Param    id   path      string  true  "Payment ID"
// @Success  200  {object}  response.PaymentResponse
// @Failure  404  {object}  pkg.HTTPError
// @Router   /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromPayment(p))
}

// ListPaymentsByOrder godoc
// @Summary  List the payments of an order, newest first
// @Tags     payments
// @Produce  json
// @Param    order_id  path      string  true  "Order ID"
// @Success  200       {array}   response.PaymentResponse
// @Router   /payments/order/{order_id} [get]
func (h *PaymentHandler) ListPaymentsByOrder(c *gin.Context) {
	payments, err := h.usecase.ListByOrderID(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(payments))
}

// ListPaymentsByUser godoc
// @Summary  List the payments of a user, newest first
// @Tags     payments
// @Produce  json
// @Param    user_id  path      string  true   "User ID"
// @Param    limit    query     int     false  "Page size (default 50, max 100)"
// @Param    offset   query     int     false  "Items to skip"
// @Success  200      {array}   response.PaymentResponse
// @Failure  400      {object}  pkg.HTTPError
// @Router   /payments/user/{user_id} [get]
func (h *PaymentHandler) ListPaymentsByUser(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	payments, err := h.usecase.ListByUserID(c.Request.Context(), c.Param("user_id"), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromPayments(payments))
}

// UpdatePaymentStatus godoc
// @Summary      Change the status of a payment
// @Description  Metadata is merged into the stored metadata.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Payment ID"
// @Param        payload  body      request.StatusUpdateRequest  true  "New status"
// @Success      200      {object}  response.PaymentResult
// @Failure      400      {object}  pkg.HTTPError
// @Failure      404      {object}  pkg.HTTPError
// @Failure      409      {object}  pkg.HTTPError
// @Failure      422      {object}  pkg.HTTPError
// @Router       /payments/{id}/status [put]
func (h *PaymentHandler) UpdatePaymentStatus(c *gin.Context) {
	var payload request.StatusUpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	updated, err := h.usecase.SetStatus(c.Request.Context(), c.Param("id"), payload.Status, payload.Metadata)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment updated successfully", &updated, nil))
}

// CapturePayment godoc
// @Summary  Capture a payment
// @Tags     payments
// @Produce  json
// @Param    id   path      string  true  "Payment ID"
// @Success  200  {object}  response.PaymentResult
// @Failure  404  {object}  pkg.HTTPError
// @Failure  422  {object}  pkg.HTTPError
// @Router   /payments/{id}/capture [put]
func (h *PaymentHandler) CapturePayment(c *gin.Context) {
	updated, err := h.usecase.Capture(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment captured successfully", &updated, nil))
}

// RefundPayment godoc
// @Summary      Refund a captured payment
// @Description  Without amount the full payment amount is refunded.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payload  body      request.RefundRequest  true  "Refund"
// @Success      200      {object}  response.PaymentResult
// @Failure      400      {object}  pkg.HTTPError
// @Failure      404      {object}  pkg.HTTPError
// @Failure      422      {object}  pkg.HTTPError
// @Router       /payments/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	var payload request.RefundRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	updated, err := h.usecase.Refund(c.Request.Context(), string(payload.PaymentID), payload.Amount, payload.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment refunded successfully", &updated, nil))
}

// CancelPayment godoc
// @Summary  Cancel a payment
// @Tags     payments
// @Produce  json
// @Param    id   path      string  true  "Payment ID"
// @Success  200  {object}  response.PaymentResult
// @Failure  404  {object}  pkg.HTTPError
// @Failure  422  {object}  pkg.HTTPError
// @Router   /payments/{id}/cancel [delete]
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	updated, err := h.usecase.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment cancelled successfully", &updated, nil))
}

// DeletePayment godoc
// @Summary      Soft-delete a payment
// @Description  The payment is marked deleted and stays readable by id.
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  response.PaymentResult
// @Failure      404  {object}  pkg.HTTPError
// @Failure      422  {object}  pkg.HTTPError
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if _, err := h.usecase.SoftDelete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPaymentResult("Payment deleted successfully", nil, nil))
}

func (h *PaymentHandler) writeError(c *gin.Context, err error) {
	appErr := mapPaymentError(err)
	logger := log.Ctx(c.Request.Context())
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("[payment][handler] request failed")
	} else {
		logger.Info().Err(err).Str("path", c.FullPath()).Str("code", appErr.Code).Msg("[payment][handler] request rejected")
	}
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrAmountRequired):
		return pkg.NewDomainErrorSimple("AMOUNT_REQUIRED", "Amount is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidAmount):
		return pkg.NewDomainErrorSimple("INVALID_AMOUNT", "Amount must be a non-negative number", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrStatusRequired):
		return pkg.NewDomainErrorSimple("STATUS_REQUIRED", "Status is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_STATUS", "Invalid payment status", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidRefundAmount):
		return pkg.NewDomainErrorSimple("INVALID_REFUND_AMOUNT", "Refund amount must be between zero and the payment amount", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidMetadataKey):
		return pkg.NewDomainErrorSimple("INVALID_METADATA", "Metadata keys must not be empty", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainErrorSimple("PAYMENT_ID_REQUIRED", "Payment ID is required", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidOrderID), errors.Is(err, usecase.ErrInvalidUserID), errors.Is(err, usecase.ErrInvalidPagination):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidStatusTransition):
		return pkg.NewDomainError("INVALID_STATUS_TRANSITION", "Status transition not allowed", err, http.StatusUnprocessableEntity)
	case errors.Is(err, usecase.ErrPaymentConcurrentUpdate):
		return pkg.NewDomainErrorSimple("PAYMENT_CONFLICT", "Payment was modified by another request", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
