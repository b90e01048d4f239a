package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	request "pagamentos_xpto/internal/adapter/http/dto/request"
	response "pagamentos_xpto/internal/adapter/http/dto/response"
	"pagamentos_xpto/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Mercado Pago payment notifications and hands them
// to reconciliation. Notifications are always acknowledged with 200 so the
// provider does not retry indefinitely; the outcome is reported in the body.

type WebhookHandler struct {
	reconcile usecase.IReconcileUseCase
}

func NewWebhookHandler(reconcile usecase.IReconcileUseCase) *WebhookHandler {
	return &WebhookHandler{reconcile: reconcile}
}

// HandleMercadoPago processes one provider notification.
func (h *WebhookHandler) HandleMercadoPago(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		log.Printf("[webhook][handler] body read failed err=%v", err)
		c.JSON(http.StatusOK, response.ReconcileResponse{Result: string(usecase.ReconcileInvalidNotification), Reason: "unreadable body"})
		return
	}

	var payload request.WebhookRequest
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &payload)
	}

	paymentID := payload.ResolvePaymentID()
	if paymentID == "" {
		// Mercado Pago also delivers the reference via query params.
		paymentID = strings.TrimSpace(c.Query("external_reference"))
	}
	if paymentID == "" {
		paymentID = strings.TrimSpace(c.Query("data.id"))
	}
	log.Printf("[webhook][handler] notification received payment_id=%q action=%q status=%q", paymentID, payload.Action, payload.Status)

	outcome := h.reconcile.Reconcile(c.Request.Context(), paymentID, payload.Status, raw)
	log.Printf("[webhook][handler] reconciliation result payment_id=%q kind=%s status=%s signalled=%t persisted=%t",
		paymentID, outcome.Kind, outcome.Status, outcome.WorkflowSignalled, outcome.Persisted)

	c.JSON(http.StatusOK, response.FromReconcileOutcome(outcome))
}
