package interfaces

import (
	"context"

	"pagamentos_xpto/internal/domain/entities"
)

// CheckoutRequest carries everything the provider needs to open a checkout.
// PaymentID doubles as the external reference, so provider notifications can
// be reconciled back to the internal payment.

type CheckoutRequest struct {
	PaymentID   string
	Title       string
	Description string
	Amount      float64
	Method      entities.PaymentMethod
}

// CheckoutResult is the provider-assigned handle for a created checkout.
// CheckoutURL is empty for methods that redirect nowhere (e.g. PIX).

type CheckoutResult struct {
	ExternalID  string
	CheckoutURL string
}

// IPaymentGateway abstracts the external payment provider (Mercado Pago).

type IPaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error)
	GetStatus(ctx context.Context, externalID string) (string, error)
}
