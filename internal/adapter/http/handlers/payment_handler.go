package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	request "pagamentos_xpto/internal/adapter/http/dto/request"
	response "pagamentos_xpto/internal/adapter/http/dto/response"
	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase"
	"pagamentos_xpto/internal/usecase/interfaces"
	"pagamentos_xpto/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)

// PaymentHandler handles HTTP requests for payments.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// CreatePayment creates a payment and, for methods that need external
// processing, starts the processing workflow.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create start method=%s amount=%.2f", payload.PaymentMethod, payload.Amount)

	out, err := h.usecase.Create(c.Request.Context(), usecase.CreatePaymentInput{
		CPF:           payload.CPF,
		Description:   payload.Description,
		Amount:        payload.Amount,
		PaymentMethod: entities.PaymentMethod(payload.PaymentMethod),
	})
	if err != nil {
		// A workflow start failure after a successful save still returns the
		// payment; the client can retry processing explicitly.
		if out.Payment != nil {
			log.Printf("[payment][handler] created without workflow payment_id=%s err=%v", out.Payment.ID, err)
			c.JSON(http.StatusCreated, response.FromPayment(out.Payment))
			return
		}
		log.Printf("[payment][handler] create failed err=%v", err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create success payment_id=%s workflow_id=%s", out.Payment.ID, out.WorkflowID)

	c.JSON(http.StatusCreated, response.FromPaymentWithWorkflow(out.Payment, out.WorkflowID))
}

// GetPayment returns one payment by id.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("payment_id")

	p, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayment(p))
}

// ListPayments returns payments filtered by cpf and payment_method query
// params, with limit/offset pagination.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	filters := interfaces.PaymentFilters{
		CPF:           c.Query("cpf"),
		PaymentMethod: entities.PaymentMethod(c.Query("payment_method")),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Offset = n
		}
	}

	payments, err := h.usecase.List(c.Request.Context(), filters)
	if err != nil {
		log.Printf("[payment][handler] list failed err=%v", err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPayments(payments))
}

// UpdatePayment applies a partial update to a payment.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id := c.Param("payment_id")

	var payload request.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	input := usecase.UpdatePaymentInput{
		CPF:         payload.CPF,
		Description: payload.Description,
		Amount:      payload.Amount,
	}
	if payload.PaymentMethod != nil {
		m := entities.PaymentMethod(*payload.PaymentMethod)
		input.PaymentMethod = &m
	}
	if payload.Status != nil {
		s := entities.PaymentStatus(*payload.Status)
		input.Status = &s
	}

	p, err := h.usecase.Update(c.Request.Context(), id, input)
	if err != nil {
		log.Printf("[payment][handler] update failed payment_id=%s err=%v", id, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] update success payment_id=%s status=%s", p.ID, p.Status)

	c.JSON(http.StatusOK, response.FromPayment(p))
}

func mapPaymentError(err error) *pkg.AppError {
	var validationErr *entities.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", validationErr.Reason, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrWorkflowNotFound):
		return pkg.NewDomainErrorSimple("WORKFLOW_NOT_FOUND", "Workflow not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrNoWorkflowNeeded):
		return pkg.NewDomainErrorSimple("NO_WORKFLOW_NEEDED", "Payment method does not require external processing", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
