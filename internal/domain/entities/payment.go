package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the externally visible payment outcome.
//
// The workflow keeps a richer internal state set (cancelled, expired, ...);
// everything terminal is projected down to PAID or FAIL before persisting.

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFail    PaymentStatus = "FAIL"
)

// PaymentMethod is the closed set of supported payment methods.

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
)

func knownPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCreditCard:
		return true
	}
	return false
}

// ValidationError carries a human-readable reason for a rejected payment.

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment: %s", e.Reason)
}

// Payment is the aggregate root persisted by the service.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (cpf-index): cpf
//
// StatusSeq records the receipt order of the notification that produced the
// current status. Status writers supply a higher sequence or are ignored, so
// a late-arriving poll result never regresses a newer webhook outcome.

type Payment struct {
	ID            string        `json:"id"`
	CPF           string        `json:"cpf"`
	Description   string        `json:"description"`
	Amount        float64       `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        PaymentStatus `json:"status"`
	StatusSeq     int64         `json:"status_seq"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewPayment builds a PENDING payment and runs full validation. Construction
// is all-or-nothing: on a validation failure no instance is returned.
func NewPayment(cpf, description string, amount float64, method PaymentMethod, id string) (*Payment, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	p := &Payment{
		ID:            id,
		CPF:           cpf,
		Description:   description,
		Amount:        amount,
		PaymentMethod: method,
		Status:        PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateStatus overwrites the status and bumps UpdatedAt. Any status may
// follow any other; transition ordering is the workflow's responsibility.
func (p *Payment) UpdateStatus(status PaymentStatus) {
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
}

// PaymentUpdate is a partial update of the mutable payment fields. Nil fields
// are left untouched.

type PaymentUpdate struct {
	CPF           *string
	Description   *string
	Amount        *float64
	PaymentMethod *PaymentMethod
}

// Update applies the provided fields and re-runs full validation. The merged
// state is validated before committing, so a rejected update leaves the
// payment exactly as it was.
func (p *Payment) Update(data PaymentUpdate) error {
	next := *p
	if data.CPF != nil {
		next.CPF = *data.CPF
	}
	if data.Description != nil {
		next.Description = *data.Description
	}
	if data.Amount != nil {
		next.Amount = *data.Amount
	}
	if data.PaymentMethod != nil {
		next.PaymentMethod = *data.PaymentMethod
	}
	next.UpdatedAt = time.Now().UTC()

	if err := next.validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *Payment) validate() error {
	if strings.TrimSpace(p.CPF) == "" {
		return &ValidationError{Reason: "cpf is required"}
	}
	if !IsValidCPF(p.CPF) {
		return &ValidationError{Reason: "cpf is invalid"}
	}
	if strings.TrimSpace(p.Description) == "" {
		return &ValidationError{Reason: "description is required"}
	}
	if p.Amount <= 0 {
		return &ValidationError{Reason: "amount must be greater than zero"}
	}
	if !knownPaymentMethod(p.PaymentMethod) {
		return &ValidationError{Reason: fmt.Sprintf("unknown payment method %q", p.PaymentMethod)}
	}
	return nil
}

// RequiresExternalProcessing reports whether the method needs a checkout at
// the external provider (and therefore a processing workflow).
func (p *Payment) RequiresExternalProcessing() bool {
	return p.PaymentMethod == PaymentMethodCreditCard
}
