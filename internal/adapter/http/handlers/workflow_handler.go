package handlers

import (
	"log"
	"net/http"

	request "pagamentos_xpto/internal/adapter/http/dto/request"
	response "pagamentos_xpto/internal/adapter/http/dto/response"
	"pagamentos_xpto/internal/usecase"

	"github.com/gin-gonic/gin"
)

// WorkflowHandler exposes the processing workflow of a payment: live status,
// progress and cooperative cancellation.

type WorkflowHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewWorkflowHandler(uc usecase.IPaymentUseCase) *WorkflowHandler {
	return &WorkflowHandler{usecase: uc}
}

// GetStatus answers the live status query of a workflow.
func (h *WorkflowHandler) GetStatus(c *gin.Context) {
	workflowID := c.Param("workflow_id")

	status, err := h.usecase.WorkflowStatus(c.Request.Context(), workflowID)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.WorkflowStatusResponse{WorkflowID: workflowID, Status: status})
}

// GetProgress answers the progress query of a workflow.
func (h *WorkflowHandler) GetProgress(c *gin.Context) {
	workflowID := c.Param("workflow_id")

	progress, err := h.usecase.WorkflowProgress(c.Request.Context(), workflowID)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.WorkflowProgressResponse{WorkflowID: workflowID, Progress: progress})
}

// Cancel requests cooperative cancellation of a workflow.
func (h *WorkflowHandler) Cancel(c *gin.Context) {
	workflowID := c.Param("workflow_id")

	var payload request.CancelWorkflowRequest
	_ = c.ShouldBindJSON(&payload)

	if err := h.usecase.CancelWorkflow(c.Request.Context(), workflowID, payload.Reason); err != nil {
		log.Printf("[workflow][handler] cancel failed workflow_id=%s err=%v", workflowID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[workflow][handler] cancel requested workflow_id=%s", workflowID)

	c.JSON(http.StatusAccepted, response.WorkflowCancelResponse{
		WorkflowID: workflowID,
		Message:    "cancellation requested",
	})
}
