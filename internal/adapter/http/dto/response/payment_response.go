package response

import (
	"time"

	"pagamentos_xpto/internal/domain/entities"
)

type PaymentResponse struct {
	ID            string    `json:"id"`
	CPF           string    `json:"cpf"`
	Description   string    `json:"description"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	WorkflowID    string    `json:"workflow_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromPayment(p *entities.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		CPF:           p.CPF,
		Description:   p.Description,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func FromPaymentWithWorkflow(p *entities.Payment, workflowID string) PaymentResponse {
	resp := FromPayment(p)
	resp.WorkflowID = workflowID
	return resp
}

func FromPayments(payments []entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, FromPayment(&payments[i]))
	}
	return out
}
