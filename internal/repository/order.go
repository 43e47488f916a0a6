package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warungpay/backend/internal/domain"
)

// OrderRepository persists orders and acts as the reconciliation sink for
// resolved notifications.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, gross_amount, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		order.ID, order.GrossAmount, order.State, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, gross_amount, state, gateway_status, fraud_status, last_notified_at, created_at, updated_at
		FROM orders WHERE id = $1
	`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

// Apply resolves a notification against the order's current state and
// persists the outcome, all inside one transaction. The order row is locked
// with SELECT ... FOR UPDATE so that concurrent notifications for the same
// order serialize at the database; the transition guard is evaluated under
// the lock, which makes first-committed-wins race-free. An order the service
// has never seen starts from pending. Every delivery, no-op or not, leaves a
// payment_events row.
func (r *OrderRepository) Apply(ctx context.Context, n domain.CanonicalNotification) (domain.Transition, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	// Upsert before locking: an order the service has never seen (e.g. created
	// before a redeploy) starts from pending. The select that follows always
	// finds a row to lock, so concurrent first deliveries still serialize.
	insert := `
		INSERT INTO orders (id, gross_amount, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, n.OrderID, n.GrossAmount, domain.StatePending, now, now); err != nil {
		return domain.Transition{}, fmt.Errorf("failed to insert order: %w", err)
	}

	lockQuery := `
		SELECT id, gross_amount, state, gateway_status, fraud_status, last_notified_at, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE
	`
	order, err := scanOrder(tx.QueryRow(ctx, lockQuery, n.OrderID))
	if err != nil {
		return domain.Transition{}, fmt.Errorf("failed to lock order: %w", err)
	}

	t := domain.Resolve(order.State, n)

	if t.Applied {
		update := `
			UPDATE orders
			SET state = $2, gateway_status = $3, fraud_status = $4, last_notified_at = $5, updated_at = $5
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, update, n.OrderID, t.To, string(n.Status), string(n.Fraud), now); err != nil {
			return domain.Transition{}, fmt.Errorf("failed to update order state: %w", err)
		}
	}

	eventInsert := `
		INSERT INTO payment_events (id, order_id, gateway_status, fraud_status, from_state, to_state, action, applied, reason, gross_amount, refund_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var refund *decimal.Decimal
	if t.Action == domain.ActionRecordRefund {
		refund = &t.RefundAmount
	}
	_, err = tx.Exec(ctx, eventInsert,
		uuid.New().String(), n.OrderID, string(n.Status), string(n.Fraud),
		t.From, t.To, string(t.Action), t.Applied, t.Reason, n.GrossAmount, refund, now,
	)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("failed to record payment event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Transition{}, fmt.Errorf("failed to commit transition: %w", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var gatewayStatus, fraudStatus *string
	err := row.Scan(
		&order.ID, &order.GrossAmount, &order.State,
		&gatewayStatus, &fraudStatus, &order.LastNotifiedAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if gatewayStatus != nil {
		order.GatewayStatus = *gatewayStatus
	}
	if fraudStatus != nil {
		order.FraudStatus = *fraudStatus
	}
	return &order, nil
}
