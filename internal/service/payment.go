package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/domain"
	"github.com/warungpay/backend/internal/gateway"
)

// Gateway is the outbound payment-gateway boundary.
type Gateway interface {
	CreateSnapTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error)
	GetTransactionStatus(ctx context.Context, orderID string) (*gateway.TransactionStatus, json.RawMessage, error)
	CancelTransaction(ctx context.Context, orderID string) (json.RawMessage, error)
	RefundTransaction(ctx context.Context, orderID string, req gateway.RefundRequest) (json.RawMessage, error)
}

// OrderStore persists orders created by checkout sessions.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

// CreateTransactionRequest is the merchant-facing checkout input.
type CreateTransactionRequest struct {
	Amount          int64                    `json:"amount" validate:"required,gt=0"`
	CustomerDetails *gateway.CustomerDetails `json:"customerDetails" validate:"required"`
	ItemDetails     []gateway.ItemDetail     `json:"itemDetails" validate:"required,min=1"`
	CustomExpiry    *gateway.CustomExpiry    `json:"customExpiry,omitempty"`
}

// CreateTransactionResponse carries the Snap session back to the merchant.
type CreateTransactionResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

// RefundInput is the merchant-facing refund input.
type RefundInput struct {
	Amount int64  `json:"amount,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// PaymentService handles checkout session creation and the pass-through
// management operations (status, cancel, refund).
type PaymentService struct {
	gw       Gateway
	store    OrderStore
	baseURL  string
	log      *zap.Logger
	validate *validator.Validate
}

func NewPaymentService(gw Gateway, store OrderStore, baseURL string, log *zap.Logger) *PaymentService {
	return &PaymentService{
		gw:       gw,
		store:    store,
		baseURL:  baseURL,
		log:      log,
		validate: validator.New(),
	}
}

// CreateTransaction persists a pending order and opens a Snap checkout
// session for it.
func (s *PaymentService) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation("missing required fields: amount, customerDetails, itemDetails")
	}

	orderID := generateOrderID()
	now := time.Now().UTC()

	order := &domain.Order{
		ID:          orderID,
		GrossAmount: decimal.NewFromInt(req.Amount),
		State:       domain.StatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, domain.ErrInternal("failed to save order", err)
	}

	snapReq := gateway.SnapRequest{
		TransactionDetails: gateway.TransactionDetails{
			OrderID:     orderID,
			GrossAmount: req.Amount,
		},
		CreditCard:      gateway.CreditCard{Secure: true},
		CustomerDetails: req.CustomerDetails,
		ItemDetails:     req.ItemDetails,
		Callbacks: &gateway.Callbacks{
			Finish:  s.baseURL + "/payment-success",
			Error:   s.baseURL + "/payment-error",
			Pending: s.baseURL + "/payment-pending",
		},
		CustomExpiry: req.CustomExpiry,
	}

	resp, err := s.gw.CreateSnapTransaction(ctx, snapReq)
	if err != nil {
		s.log.Error("snap transaction creation failed",
			zap.String("orderId", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("orderId", orderID),
		zap.Int64("amount", req.Amount),
	)

	return &CreateTransactionResponse{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		OrderID:     orderID,
	}, nil
}

// GetStatus passes the gateway's status object through untouched.
func (s *PaymentService) GetStatus(ctx context.Context, orderID string) (json.RawMessage, error) {
	if orderID = strings.TrimSpace(orderID); orderID == "" {
		return nil, domain.ErrValidation("orderId is required")
	}
	_, raw, err := s.gw.GetTransactionStatus(ctx, orderID)
	return raw, err
}

// Cancel cancels an order at the gateway.
func (s *PaymentService) Cancel(ctx context.Context, orderID string) (json.RawMessage, error) {
	if orderID = strings.TrimSpace(orderID); orderID == "" {
		return nil, domain.ErrValidation("orderId is required")
	}
	return s.gw.CancelTransaction(ctx, orderID)
}

// Refund requests a refund at the gateway. The reason defaults to the
// customer-request wording the dashboard expects.
func (s *PaymentService) Refund(ctx context.Context, orderID string, in RefundInput) (json.RawMessage, error) {
	if orderID = strings.TrimSpace(orderID); orderID == "" {
		return nil, domain.ErrValidation("orderId is required")
	}
	reason := in.Reason
	if reason == "" {
		reason = "Customer request"
	}
	req := gateway.RefundRequest{
		RefundKey: fmt.Sprintf("refund-%s-%d", orderID, time.Now().UnixMilli()),
		Amount:    in.Amount,
		Reason:    reason,
	}
	return s.gw.RefundTransaction(ctx, orderID, req)
}

// generateOrderID returns ORDER-<unix millis>-<short random suffix>.
func generateOrderID() string {
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("ORDER-%d-%s", time.Now().UnixMilli(), suffix)
}
