package response

import "pagamentos_xpto/internal/usecase"

type WorkflowStatusResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

type WorkflowProgressResponse struct {
	WorkflowID string `json:"workflow_id"`
	Progress   any    `json:"progress"`
}

type WorkflowCancelResponse struct {
	WorkflowID string `json:"workflow_id"`
	Message    string `json:"message"`
}

type ReconcileResponse struct {
	Result            string `json:"result"`
	PaymentID         string `json:"payment_id,omitempty"`
	Status            string `json:"status,omitempty"`
	WorkflowSignalled bool   `json:"workflow_signalled"`
	Persisted         bool   `json:"persisted"`
	Reason            string `json:"reason,omitempty"`
}

func FromReconcileOutcome(o usecase.ReconcileOutcome) ReconcileResponse {
	return ReconcileResponse{
		Result:            string(o.Kind),
		PaymentID:         o.PaymentID,
		Status:            string(o.Status),
		WorkflowSignalled: o.WorkflowSignalled,
		Persisted:         o.Persisted,
		Reason:            o.Reason,
	}
}
