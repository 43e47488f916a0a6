package gateway

// Request/response shapes for the Snap and Core APIs. Field names follow the
// gateway's JSON contract.

// TransactionDetails identifies the order and its amount.
type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

// CustomerDetails carries the payer's identity for the checkout page.
type CustomerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ItemDetail is a single line item of the order.
type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// CustomExpiry overrides the gateway's default session expiry.
type CustomExpiry struct {
	OrderTime      string `json:"order_time,omitempty"`
	ExpiryDuration int    `json:"expiry_duration"`
	Unit           string `json:"unit"`
}

// CreditCard configures the card checkout behavior.
type CreditCard struct {
	Secure bool `json:"secure"`
}

// Callbacks tells the gateway where to send the customer after checkout.
type Callbacks struct {
	Finish  string `json:"finish,omitempty"`
	Error   string `json:"error,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// SnapRequest is the body of POST /snap/v1/transactions.
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CreditCard         CreditCard         `json:"credit_card"`
	CustomerDetails    *CustomerDetails   `json:"customer_details,omitempty"`
	ItemDetails        []ItemDetail       `json:"item_details,omitempty"`
	Callbacks          *Callbacks         `json:"callbacks,omitempty"`
	CustomExpiry       *CustomExpiry      `json:"custom_expiry,omitempty"`
}

// SnapResponse is the gateway's answer to a Snap transaction request.
type SnapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}

// TransactionStatus is the Core API's status object for an order. Unmodeled
// fields are intentionally absent; callers pass the object through to the
// merchant as-is via RawJSON when completeness matters.
type TransactionStatus struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
}

// RefundRequest is the body of POST /v2/{order_id}/refund.
type RefundRequest struct {
	RefundKey string `json:"refund_key"`
	Amount    int64  `json:"amount,omitempty"`
	Reason    string `json:"reason"`
}
