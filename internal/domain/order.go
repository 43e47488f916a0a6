package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState is the canonical payment state of an order as seen by the
// merchant, collapsed from the gateway's status/fraud tuples.
type PaymentState string

const (
	StatePending    PaymentState = "pending"
	StateChallenged PaymentState = "challenged"
	StateSuccess    PaymentState = "success"
	StateDenied     PaymentState = "denied"
	StateCancelled  PaymentState = "cancelled"
)

// IsTerminal reports whether no further transition may be accepted from s.
func (s PaymentState) IsTerminal() bool {
	switch s {
	case StateSuccess, StateDenied, StateCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known canonical state.
func (s PaymentState) Valid() bool {
	switch s {
	case StatePending, StateChallenged, StateSuccess, StateDenied, StateCancelled:
		return true
	}
	return false
}

// Order is a payment transaction tracked by this service. Created when a
// checkout session is requested; its state is mutated only through the
// notification pipeline.
type Order struct {
	ID             string          `json:"orderId"`
	GrossAmount    decimal.Decimal `json:"grossAmount"`
	State          PaymentState    `json:"state"`
	GatewayStatus  string          `json:"gatewayStatus,omitempty"`
	FraudStatus    string          `json:"fraudStatus,omitempty"`
	LastNotifiedAt *time.Time      `json:"lastNotifiedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
