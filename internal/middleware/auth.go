package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/warungpay/backend/internal/contextkeys"
	"github.com/warungpay/backend/internal/handler"
)

// Auth verifies a bearer HS256 JWT issued by the merchant dashboard. This
// service only validates tokens; it never issues them. Applied to the
// management endpoints (cancel, refund).
func Auth(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handler.JSON(w, http.StatusUnauthorized, handler.Envelope{Message: "no token provided"})
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handler.JSON(w, http.StatusUnauthorized, handler.Envelope{Message: "invalid authorization header"})
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				handler.JSON(w, http.StatusUnauthorized, handler.Envelope{Message: "invalid or expired token"})
				return
			}

			subject := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				subject, _ = claims["sub"].(string)
			}
			ctx := context.WithValue(r.Context(), contextkeys.Subject, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
