package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/domain"
	"github.com/warungpay/backend/internal/service"
)

// WebhookHandler receives asynchronous payment notifications from the
// gateway. The gateway retries delivery until it sees a 2xx, so every
// accepted notification — including idempotent no-ops — must acknowledge
// quickly; only signature and validation failures answer 4xx.
type WebhookHandler struct {
	svc        *service.NotificationService
	log        *zap.Logger
	production bool
}

func NewWebhookHandler(svc *service.NotificationService, log *zap.Logger, production bool) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log, production: production}
}

// HandleNotification handles POST /api/payment/notification.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawNotification
	if err := DecodeJSON(r, &raw); err != nil {
		Error(w, h.log, h.production, err)
		return
	}

	t, err := h.svc.Process(r.Context(), raw)
	if err != nil {
		if appErr, ok := domain.AsAppError(err); ok && appErr.Code == http.StatusBadRequest {
			h.log.Warn("notification rejected",
				zap.String("orderId", raw.OrderID),
				zap.String("remoteAddr", r.RemoteAddr),
				zap.String("reason", appErr.Message),
			)
		}
		Error(w, h.log, h.production, err)
		return
	}

	env := Envelope{Success: true, Message: "Notification processed successfully"}
	if !t.Applied {
		env.Message = "Notification acknowledged, no state change"
		env.Noop = true
	}
	JSON(w, http.StatusOK, env)
}
