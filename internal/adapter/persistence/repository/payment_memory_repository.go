package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase/interfaces"
)

// PaymentMemoryRepository keeps payments in process memory. Used in tests and
// when REPOSITORY_MOCK is enabled, so the service runs without DynamoDB.

type PaymentMemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]entities.Payment
}

var _ interfaces.IPaymentRepository = (*PaymentMemoryRepository)(nil)

func NewPaymentMemoryRepository() *PaymentMemoryRepository {
	return &PaymentMemoryRepository{payments: make(map[string]entities.Payment)}
}

func (r *PaymentMemoryRepository) Save(_ context.Context, p *entities.Payment) (*entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = *p
	saved := *p
	return &saved, nil
}

func (r *PaymentMemoryRepository) FindByID(_ context.Context, id string) (*entities.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PaymentMemoryRepository) FindAll(_ context.Context, filters interfaces.PaymentFilters) ([]entities.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entities.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if filters.CPF != "" && p.CPF != filters.CPF {
			continue
		}
		if filters.PaymentMethod != "" && p.PaymentMethod != filters.PaymentMethod {
			continue
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return paginate(items, filters.Limit, filters.Offset), nil
}

// UpdateStatus applies the same sequence gating as the DynamoDB repository: a
// write with a stale sequence is a no-op and the current state is returned.
func (r *PaymentMemoryRepository) UpdateStatus(_ context.Context, id string, status entities.PaymentStatus, seq int64) (*entities.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	if seq > p.StatusSeq {
		p.Status = status
		p.StatusSeq = seq
		p.UpdatedAt = time.Now()
		r.payments[id] = p
	}
	return &p, nil
}
