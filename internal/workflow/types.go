// Package workflow implements the payment processing workflow: validation,
// checkout creation at the external provider, a signal-driven confirmation
// wait with poll fallback, and finalization of the persisted payment status.
package workflow

import (
	"encoding/json"
	"time"

	"pagamentos_xpto/internal/domain/entities"
)

const (
	TypePaymentProcessing = "payment_processing"

	SignalCancel  = "cancel_payment"
	SignalConfirm = "confirm_payment"

	QueryStatus   = "payment_status"
	QueryProgress = "workflow_progress"
)

// Status is the workflow-internal state, a superset of the persisted
// entities.PaymentStatus.

type Status string

const (
	StatusStarted          Status = "started"
	StatusValidating       Status = "validating"
	StatusValidationFailed Status = "validation_failed"
	StatusProcessing       Status = "processing"
	StatusProcessingFailed Status = "processing_failed"
	StatusPending          Status = "pending"
	StatusPaid             Status = "paid"
	StatusFailed           Status = "failed"
	StatusCancelled        Status = "cancelled"
	StatusExpired          Status = "expired"
	StatusError            Status = "error"
)

// paymentStatusFor projects a terminal workflow status onto the persisted
// payment enum. The second return is false for workflow-only outcomes
// (cancelled), which leave the payment row untouched.
func paymentStatusFor(s Status) (entities.PaymentStatus, bool) {
	switch s {
	case StatusPaid:
		return entities.PaymentStatusPaid, true
	case StatusValidationFailed, StatusProcessingFailed, StatusFailed, StatusExpired, StatusError:
		return entities.PaymentStatusFail, true
	default:
		return "", false
	}
}

// Input starts one payment processing attempt.

type Input struct {
	PaymentID     string  `json:"payment_id"`
	CPF           string  `json:"cpf"`
	Description   string  `json:"description"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

// Result is the workflow's terminal outcome.

type Result struct {
	PaymentID     string `json:"payment_id"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
}

// Progress is the answer to the workflow_progress query.

type Progress struct {
	Status      string `json:"status"`
	Step        string `json:"step"`
	PaymentID   string `json:"payment_id"`
	ExternalID  string `json:"external_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// CancelSignal asks the workflow to stop while it is still waiting for
// confirmation. Cancellation is cooperative: it takes effect at the next
// suspension check.

type CancelSignal struct {
	Reason string `json:"reason"`
}

// ConfirmSignal carries a reconciled provider outcome into the wait loop.
// Status uses the workflow vocabulary: "paid", "failed" or "pending"
// (pending is recorded but not decisive).

type ConfirmSignal struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Config bounds the confirmation wait. Defaults match production; tests
// shrink them.

type Config struct {
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
}

func DefaultConfig() Config {
	return Config{
		ConfirmationTimeout: 30 * time.Minute,
		PollInterval:        2 * time.Minute,
	}
}

// WorkflowIDPrefix returns the id prefix shared by every processing attempt
// of one payment; used to locate live workflows during reconciliation.
func WorkflowIDPrefix(paymentID string) string {
	return "payment-" + paymentID + "-"
}
