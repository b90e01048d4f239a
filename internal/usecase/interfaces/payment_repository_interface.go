package interfaces

import (
	"context"

	"pagamentos_xpto/internal/domain/entities"
)

// PaymentFilters narrows FindAll results. Zero values mean "no filter".

type PaymentFilters struct {
	CPF           string
	PaymentMethod entities.PaymentMethod
	Limit         int
	Offset        int
}

// IPaymentRepository abstracts Payment persistence (DynamoDB in production,
// in-memory in mock mode).
//
// FindByID returns (nil, nil) for an unknown id so callers can distinguish
// "absent" from "error". UpdateStatus is idempotent and ordered: a write
// whose seq is not greater than the stored status_seq is a no-op, which makes
// concurrent writers (webhook racing a poll) safe without locks.

type IPaymentRepository interface {
	Save(ctx context.Context, p *entities.Payment) (*entities.Payment, error)
	FindByID(ctx context.Context, id string) (*entities.Payment, error)
	FindAll(ctx context.Context, filters PaymentFilters) ([]entities.Payment, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, seq int64) (*entities.Payment, error)
}
