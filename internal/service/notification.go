package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/domain"
	"github.com/warungpay/backend/pkg/signature"
)

// ReconciliationSink applies a resolved transition for an order. The Postgres
// implementation locks the order row and re-evaluates the transition guard
// under that lock; implementations must make first-committed-wins race-free.
type ReconciliationSink interface {
	Apply(ctx context.Context, n domain.CanonicalNotification) (domain.Transition, error)
}

// NotificationService drives the webhook pipeline: verify signature,
// normalize, serialize per order, resolve, hand off to the sink.
type NotificationService struct {
	sink      ReconciliationSink
	serverKey string
	log       *zap.Logger
	locks     keyedMutex
}

func NewNotificationService(sink ReconciliationSink, serverKey string, log *zap.Logger) *NotificationService {
	return &NotificationService{
		sink:      sink,
		serverKey: serverKey,
		log:       log,
	}
}

// Process handles one inbound gateway notification. The signature is checked
// against the raw payload fields before anything else; a forged or malformed
// notification never reaches the state machine. Duplicate and out-of-order
// deliveries resolve to acknowledged no-ops.
func (s *NotificationService) Process(ctx context.Context, raw domain.RawNotification) (domain.Transition, error) {
	if !signature.Verify(raw.OrderID, raw.StatusCode, raw.GrossAmount, raw.SignatureKey, s.serverKey) {
		s.log.Warn("webhook signature verification failed",
			zap.String("orderId", raw.OrderID),
			zap.String("statusCode", raw.StatusCode),
		)
		return domain.Transition{}, domain.ErrSignature("invalid signature key")
	}

	n, err := domain.NormalizeNotification(raw)
	if err != nil {
		return domain.Transition{}, err
	}

	s.log.Info("transaction notification received",
		zap.String("orderId", n.OrderID),
		zap.String("transactionStatus", string(n.Status)),
		zap.String("fraudStatus", string(n.Fraud)),
	)

	// Notifications for different orders proceed in parallel; only deliveries
	// for the same order serialize here.
	unlock := s.locks.lock(n.OrderID)
	defer unlock()

	t, err := s.sink.Apply(ctx, n)
	if err != nil {
		return domain.Transition{}, domain.ErrInternal("failed to apply transition", err)
	}

	if !t.Applied {
		s.log.Info("notification resolved to no-op",
			zap.String("orderId", n.OrderID),
			zap.String("state", string(t.From)),
			zap.String("reason", t.Reason),
		)
	} else {
		s.log.Info("order state transition applied",
			zap.String("orderId", n.OrderID),
			zap.String("from", string(t.From)),
			zap.String("to", string(t.To)),
			zap.String("action", string(t.Action)),
		)
	}
	return t, nil
}

// keyedMutex serializes callers by key. Entries are reference counted and
// removed once the last holder releases, so the map does not grow with order
// cardinality.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
