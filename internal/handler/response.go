package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/domain"
)

// Envelope is the response shape every endpoint uses.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Detail  string      `json:"error,omitempty"`
	Noop    bool        `json:"noop,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// Success writes a 200 envelope wrapping data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Error translates an error into the failure envelope. AppError carries its
// own status code; anything else is a generic 500. Wrapped causes are logged
// server-side and echoed in the error field only outside production.
func Error(w http.ResponseWriter, log *zap.Logger, production bool, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		log.Error("unhandled error", zap.Error(err))
		JSON(w, http.StatusInternalServerError, Envelope{Message: "Internal server error"})
		return
	}

	env := Envelope{Message: appErr.Message}
	if appErr.Err != nil {
		log.Error("request failed",
			zap.Int("status", appErr.Code),
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err),
		)
		if !production {
			env.Detail = appErr.Err.Error()
		}
	}
	JSON(w, appErr.Code, env)
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}
