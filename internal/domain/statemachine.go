package domain

import "github.com/shopspring/decimal"

// ActionKind tells the reconciliation sink what an accepted transition means.
type ActionKind string

const (
	ActionNone           ActionKind = "none"
	ActionMarkPending    ActionKind = "mark_pending"
	ActionMarkChallenged ActionKind = "mark_challenged"
	ActionMarkSuccess    ActionKind = "mark_success"
	ActionMarkDenied     ActionKind = "mark_denied"
	ActionMarkCancelled  ActionKind = "mark_cancelled"
	ActionRecordRefund   ActionKind = "record_refund"
)

// Transition is the outcome of resolving a notification against an order's
// current state. When Applied is false the notification was a duplicate,
// arrived out of order, or carried an unhandled status; the sink records it
// as a no-op and the gateway still gets a 2xx.
type Transition struct {
	From         PaymentState
	To           PaymentState
	Action       ActionKind
	Applied      bool
	Reason       string
	Amount       decimal.Decimal
	RefundAmount decimal.Decimal
}

// Resolve maps a (gateway status, fraud status) tuple onto the canonical
// state machine. Pure: performs no I/O and never mutates its inputs.
//
// Guards, in order: unhandled statuses change nothing; terminal states
// (success, denied, cancelled) are immutable; challenged never regresses to
// pending; re-delivery of the current state is a no-op. The gateway retries
// and does not guarantee ordering, so every guard resolves to an
// acknowledged no-op rather than an error.
func Resolve(current PaymentState, n CanonicalNotification) Transition {
	t := Transition{From: current, To: current, Action: ActionNone}

	if n.Status == StatusUnknown {
		t.Reason = "unhandled transaction status"
		return t
	}

	target, action := targetState(n)

	// Refunds annotate a successful order; they never move the state.
	if action == ActionRecordRefund {
		if current != StateSuccess {
			t.Reason = "refund notification for a non-successful order"
			return t
		}
		t.Applied = true
		t.Action = ActionRecordRefund
		t.Amount = n.GrossAmount
		t.RefundAmount = refundAmount(n)
		return t
	}

	if current.IsTerminal() {
		if target == current {
			t.Reason = "duplicate delivery"
		} else {
			t.Reason = "terminal state is immutable"
		}
		return t
	}

	if current == StateChallenged && target == StatePending {
		t.Reason = "challenged order cannot regress to pending"
		return t
	}

	if target == current {
		t.Reason = "duplicate delivery"
		return t
	}

	t.To = target
	t.Action = action
	t.Applied = true
	t.Amount = n.GrossAmount
	return t
}

func targetState(n CanonicalNotification) (PaymentState, ActionKind) {
	switch n.Status {
	case StatusCapture:
		switch n.Fraud {
		case FraudChallenge:
			return StateChallenged, ActionMarkChallenged
		case FraudDeny:
			return StateDenied, ActionMarkDenied
		default:
			// accept, or no fraud assessment attached
			return StateSuccess, ActionMarkSuccess
		}
	case StatusSettlement:
		return StateSuccess, ActionMarkSuccess
	case StatusDeny:
		return StateDenied, ActionMarkDenied
	case StatusCancel, StatusExpire:
		return StateCancelled, ActionMarkCancelled
	case StatusRefund, StatusPartialRefund:
		return StateSuccess, ActionRecordRefund
	default:
		// pending, authorize
		return StatePending, ActionMarkPending
	}
}

func refundAmount(n CanonicalNotification) decimal.Decimal {
	if n.RefundAmount.IsPositive() {
		return n.RefundAmount
	}
	return n.GrossAmount
}
