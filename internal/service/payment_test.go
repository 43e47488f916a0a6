package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/domain"
	"github.com/warungpay/backend/internal/gateway"
	"github.com/warungpay/backend/internal/repository"
)

type fakeGateway struct {
	lastSnap   gateway.SnapRequest
	lastRefund gateway.RefundRequest
	snapErr    error
}

func (f *fakeGateway) CreateSnapTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error) {
	f.lastSnap = req
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return &gateway.SnapResponse{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token"}, nil
}

func (f *fakeGateway) GetTransactionStatus(ctx context.Context, orderID string) (*gateway.TransactionStatus, json.RawMessage, error) {
	return &gateway.TransactionStatus{OrderID: orderID}, json.RawMessage(`{"order_id":"` + orderID + `"}`), nil
}

func (f *fakeGateway) CancelTransaction(ctx context.Context, orderID string) (json.RawMessage, error) {
	return json.RawMessage(`{"status_code":"200"}`), nil
}

func (f *fakeGateway) RefundTransaction(ctx context.Context, orderID string, req gateway.RefundRequest) (json.RawMessage, error) {
	f.lastRefund = req
	return json.RawMessage(`{"status_code":"200"}`), nil
}

func validCreateRequest() *CreateTransactionRequest {
	return &CreateTransactionRequest{
		Amount:          150000,
		CustomerDetails: &gateway.CustomerDetails{FirstName: "Budi", Email: "budi@example.com"},
		ItemDetails:     []gateway.ItemDetail{{ID: "SKU-1", Name: "Widget", Price: 150000, Quantity: 1}},
	}
}

func newPaymentService(gw Gateway) (*PaymentService, *repository.MemoryOrderRepository) {
	repo := repository.NewMemoryOrderRepository()
	return NewPaymentService(gw, repo, "https://shop.example.com", zap.NewNop()), repo
}

func TestCreateTransaction_PersistsPendingOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc, repo := newPaymentService(gw)

	resp, err := svc.CreateTransaction(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "snap-token", resp.Token)
	assert.True(t, strings.HasPrefix(resp.OrderID, "ORDER-"), "order id %q", resp.OrderID)

	order, err := repo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, domain.StatePending, order.State)
	assert.Equal(t, "150000", order.GrossAmount.String())

	// Callbacks come from the configured base URL.
	require.NotNil(t, gw.lastSnap.Callbacks)
	assert.Equal(t, "https://shop.example.com/payment-success", gw.lastSnap.Callbacks.Finish)
	assert.True(t, gw.lastSnap.CreditCard.Secure)
}

func TestCreateTransaction_MissingFields(t *testing.T) {
	svc, _ := newPaymentService(&fakeGateway{})

	cases := []*CreateTransactionRequest{
		{CustomerDetails: validCreateRequest().CustomerDetails, ItemDetails: validCreateRequest().ItemDetails},
		{Amount: 150000, ItemDetails: validCreateRequest().ItemDetails},
		{Amount: 150000, CustomerDetails: validCreateRequest().CustomerDetails},
	}
	for _, req := range cases {
		_, err := svc.CreateTransaction(context.Background(), req)
		require.Error(t, err)
		appErr, ok := domain.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Code)
	}
}

func TestCreateTransaction_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{snapErr: domain.ErrGateway("gateway rejected transaction", assert.AnError)}
	svc, _ := newPaymentService(gw)

	_, err := svc.CreateTransaction(context.Background(), validCreateRequest())
	require.Error(t, err)
	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 502, appErr.Code)
}

func TestRefund_DefaultsReasonAndBuildsKey(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newPaymentService(gw)

	_, err := svc.Refund(context.Background(), "ORDER-9", RefundInput{Amount: 50000})
	require.NoError(t, err)

	assert.Equal(t, "Customer request", gw.lastRefund.Reason)
	assert.Equal(t, int64(50000), gw.lastRefund.Amount)
	assert.True(t, strings.HasPrefix(gw.lastRefund.RefundKey, "refund-ORDER-9-"))
}

func TestStatusAndCancel_RequireOrderID(t *testing.T) {
	svc, _ := newPaymentService(&fakeGateway{})

	_, err := svc.GetStatus(context.Background(), "  ")
	require.Error(t, err)

	_, err = svc.Cancel(context.Background(), "")
	require.Error(t, err)
}
