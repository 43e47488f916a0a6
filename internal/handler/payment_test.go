package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/gateway"
	"github.com/warungpay/backend/internal/repository"
	"github.com/warungpay/backend/internal/service"
)

type stubGateway struct{}

func (stubGateway) CreateSnapTransaction(ctx context.Context, req gateway.SnapRequest) (*gateway.SnapResponse, error) {
	return &gateway.SnapResponse{Token: "tok", RedirectURL: "https://example.com/redirect"}, nil
}

func (stubGateway) GetTransactionStatus(ctx context.Context, orderID string) (*gateway.TransactionStatus, json.RawMessage, error) {
	return nil, json.RawMessage(`{"order_id":"` + orderID + `","transaction_status":"settlement"}`), nil
}

func (stubGateway) CancelTransaction(ctx context.Context, orderID string) (json.RawMessage, error) {
	return json.RawMessage(`{"status_code":"200"}`), nil
}

func (stubGateway) RefundTransaction(ctx context.Context, orderID string, req gateway.RefundRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"status_code":"200"}`), nil
}

func newPaymentRouter() http.Handler {
	repo := repository.NewMemoryOrderRepository()
	svc := service.NewPaymentService(stubGateway{}, repo, "https://shop.example.com", zap.NewNop())
	h := NewPaymentHandler(svc, zap.NewNop(), false)

	r := chi.NewRouter()
	r.Post("/api/payment/create-transaction", h.CreateTransaction)
	r.Get("/api/payment/status/{orderID}", h.Status)
	r.Post("/api/payment/cancel/{orderID}", h.Cancel)
	r.Post("/api/payment/refund/{orderID}", h.Refund)
	r.Get("/api/payment/methods", h.Methods)
	return r
}

func TestCreateTransactionEndpoint(t *testing.T) {
	router := newPaymentRouter()

	body := []byte(`{
		"amount": 150000,
		"customerDetails": {"first_name": "Budi", "email": "budi@example.com"},
		"itemDetails": [{"id": "SKU-1", "name": "Widget", "price": 150000, "quantity": 1}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-transaction", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Success bool                              `json:"success"`
		Data    service.CreateTransactionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "tok", env.Data.Token)
	assert.NotEmpty(t, env.Data.OrderID)
}

func TestCreateTransactionEndpoint_MissingFields(t *testing.T) {
	router := newPaymentRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/payment/create-transaction",
		bytes.NewReader([]byte(`{"amount": 150000}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "missing required fields")
}

func TestStatusEndpoint_PassesGatewayObjectThrough(t *testing.T) {
	router := newPaymentRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/payment/status/ORDER-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ORDER-42", env.Data["order_id"])
	assert.Equal(t, "settlement", env.Data["transaction_status"])
}

func TestMethodsEndpoint(t *testing.T) {
	router := newPaymentRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/payment/methods", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool                `json:"success"`
		Data    map[string][]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Contains(t, env.Data["bank_transfer"], "bca")
	assert.Contains(t, env.Data["e_wallet"], "gopay")
}

func TestRefundEndpoint_EmptyBodyAllowed(t *testing.T) {
	router := newPaymentRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/payment/refund/ORDER-42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
