package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the transaction_status field of a gateway notification.
type TransactionStatus string

const (
	StatusCapture       TransactionStatus = "capture"
	StatusSettlement    TransactionStatus = "settlement"
	StatusDeny          TransactionStatus = "deny"
	StatusCancel        TransactionStatus = "cancel"
	StatusExpire        TransactionStatus = "expire"
	StatusPending       TransactionStatus = "pending"
	StatusRefund        TransactionStatus = "refund"
	StatusPartialRefund TransactionStatus = "partial_refund"
	StatusAuthorize     TransactionStatus = "authorize"

	// StatusUnknown covers values the gateway may add in the future. Unknown
	// statuses are accepted and then ignored by the state machine rather than
	// rejected, so new gateway releases don't turn into retry storms.
	StatusUnknown TransactionStatus = "unknown"
)

// FraudStatus is the gateway's risk assessment accompanying a capture.
type FraudStatus string

const (
	FraudAccept    FraudStatus = "accept"
	FraudChallenge FraudStatus = "challenge"
	FraudDeny      FraudStatus = "deny"
	FraudNone      FraudStatus = ""
)

// RawNotification is the wire schema of a Midtrans HTTP notification. The
// gateway owns this format; every field arrives as a string.
type RawNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	TransactionTime   string `json:"transaction_time"`
	RefundAmount      string `json:"refund_amount"`
}

// CanonicalNotification is a validated, typed view of a RawNotification.
type CanonicalNotification struct {
	OrderID     string
	Status      TransactionStatus
	Fraud       FraudStatus
	StatusCode  string
	GrossAmount decimal.Decimal
	// RawGrossAmount is the amount exactly as the gateway sent it. Signature
	// verification must use this string, never a reformatted number.
	RawGrossAmount string
	RefundAmount   decimal.Decimal
	PaymentType    string
	TransactionID  string
	SignatureKey   string
	ReceivedAt     time.Time
}

// NormalizeNotification validates a raw payload and maps it to its canonical
// form. Unknown transaction statuses normalize to StatusUnknown; missing or
// malformed required fields fail with a validation error.
func NormalizeNotification(raw RawNotification) (CanonicalNotification, error) {
	if raw.OrderID == "" {
		return CanonicalNotification{}, ErrValidation("notification missing order_id")
	}
	if raw.TransactionStatus == "" {
		return CanonicalNotification{}, ErrValidation("notification missing transaction_status")
	}
	if raw.StatusCode == "" {
		return CanonicalNotification{}, ErrValidation("notification missing status_code")
	}
	if raw.GrossAmount == "" {
		return CanonicalNotification{}, ErrValidation("notification missing gross_amount")
	}

	amount, err := decimal.NewFromString(raw.GrossAmount)
	if err != nil {
		return CanonicalNotification{}, ErrValidation("gross_amount is not a valid decimal")
	}
	if amount.IsNegative() {
		return CanonicalNotification{}, ErrValidation("gross_amount must not be negative")
	}

	n := CanonicalNotification{
		OrderID:        raw.OrderID,
		Status:         parseTransactionStatus(raw.TransactionStatus),
		Fraud:          parseFraudStatus(raw.FraudStatus),
		StatusCode:     raw.StatusCode,
		GrossAmount:    amount,
		RawGrossAmount: raw.GrossAmount,
		PaymentType:    raw.PaymentType,
		TransactionID:  raw.TransactionID,
		SignatureKey:   raw.SignatureKey,
		ReceivedAt:     time.Now().UTC(),
	}

	if raw.RefundAmount != "" {
		if refund, err := decimal.NewFromString(raw.RefundAmount); err == nil && !refund.IsNegative() {
			n.RefundAmount = refund
		}
	}

	return n, nil
}

func parseTransactionStatus(s string) TransactionStatus {
	switch TransactionStatus(s) {
	case StatusCapture, StatusSettlement, StatusDeny, StatusCancel, StatusExpire,
		StatusPending, StatusRefund, StatusPartialRefund, StatusAuthorize:
		return TransactionStatus(s)
	}
	return StatusUnknown
}

func parseFraudStatus(s string) FraudStatus {
	switch FraudStatus(s) {
	case FraudAccept, FraudChallenge, FraudDeny:
		return FraudStatus(s)
	}
	// Unrecognized fraud statuses are treated as absent.
	return FraudNone
}
