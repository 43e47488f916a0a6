package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/service"
)

// PaymentHandler exposes checkout and transaction management endpoints.
type PaymentHandler struct {
	svc        *service.PaymentService
	log        *zap.Logger
	production bool
}

func NewPaymentHandler(svc *service.PaymentService, log *zap.Logger, production bool) *PaymentHandler {
	return &PaymentHandler{svc: svc, log: log, production: production}
}

// CreateTransaction handles POST /api/payment/create-transaction.
func (h *PaymentHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTransactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, h.log, h.production, err)
		return
	}

	resp, err := h.svc.CreateTransaction(r.Context(), &req)
	if err != nil {
		Error(w, h.log, h.production, err)
		return
	}
	Success(w, resp)
}

// Status handles GET /api/payment/status/{orderID}.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		Error(w, h.log, h.production, err)
		return
	}
	Success(w, raw)
}

// Cancel handles POST /api/payment/cancel/{orderID}.
func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		Error(w, h.log, h.production, err)
		return
	}
	Success(w, raw)
}

// Refund handles POST /api/payment/refund/{orderID}.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var in service.RefundInput
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &in); err != nil {
			Error(w, h.log, h.production, err)
			return
		}
	}

	raw, err := h.svc.Refund(r.Context(), chi.URLParam(r, "orderID"), in)
	if err != nil {
		Error(w, h.log, h.production, err)
		return
	}
	Success(w, raw)
}

// Methods handles GET /api/payment/methods.
func (h *PaymentHandler) Methods(w http.ResponseWriter, r *http.Request) {
	Success(w, map[string][]string{
		"credit_card":      {"visa", "mastercard", "jcb"},
		"bank_transfer":    {"bca", "bni", "bri", "mandiri", "permata"},
		"e_wallet":         {"gopay", "shopeepay", "dana"},
		"over_the_counter": {"indomaret", "alfamart"},
		"cardless_credit":  {"akulaku"},
	})
}
