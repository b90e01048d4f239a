package routes

import (
	"pagamentos_xpto/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPayments  = "/payments"
	PathWorkflows = "/workflows"
	PathWebhooks  = "/webhooks"
)

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, workflowHandler *handlers.WorkflowHandler, webhookHandler *handlers.WebhookHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("", paymentHandler.ListPayments)
		payments.GET("/:payment_id", paymentHandler.GetPayment)
		payments.PATCH("/:payment_id", paymentHandler.UpdatePayment)
	}

	workflows := rg.Group(PathWorkflows)
	{
		workflows.GET("/:workflow_id/status", workflowHandler.GetStatus)
		workflows.GET("/:workflow_id/progress", workflowHandler.GetProgress)
		workflows.POST("/:workflow_id/cancel", workflowHandler.Cancel)
	}

	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/mercadopago", webhookHandler.HandleMercadoPago)
	}
}
