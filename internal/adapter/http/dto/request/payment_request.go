package request

// CreatePaymentRequest is the payload for payment creation.

type CreatePaymentRequest struct {
	CPF           string  `json:"cpf" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
}

// UpdatePaymentRequest is a partial update; absent fields are left untouched.

type UpdatePaymentRequest struct {
	CPF           *string  `json:"cpf"`
	Description   *string  `json:"description"`
	Amount        *float64 `json:"amount"`
	PaymentMethod *string  `json:"payment_method"`
	Status        *string  `json:"status"`
}

// CancelWorkflowRequest carries an optional cancellation reason.

type CancelWorkflowRequest struct {
	Reason string `json:"reason"`
}
