package repository

import (
	"context"
	"sync"
	"time"

	"github.com/warungpay/backend/internal/domain"
)

// MemoryOrderRepository is an in-memory order store and reconciliation sink
// for tests and local development without Postgres.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	events []domain.Transition
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

// Apply mirrors the Postgres sink: resolve under the store lock, mutate only
// when the transition applied, record every delivery.
func (r *MemoryOrderRepository) Apply(ctx context.Context, n domain.CanonicalNotification) (domain.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	order, ok := r.orders[n.OrderID]
	if !ok {
		order = &domain.Order{
			ID:          n.OrderID,
			GrossAmount: n.GrossAmount,
			State:       domain.StatePending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.orders[n.OrderID] = order
	}

	t := domain.Resolve(order.State, n)
	if t.Applied {
		order.State = t.To
		order.GatewayStatus = string(n.Status)
		order.FraudStatus = string(n.Fraud)
		order.LastNotifiedAt = &now
		order.UpdatedAt = now
	}
	r.events = append(r.events, t)
	return t, nil
}

// Events returns a copy of every recorded transition, no-ops included.
func (r *MemoryOrderRepository) Events() []domain.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Transition, len(r.events))
	copy(out, r.events)
	return out
}
