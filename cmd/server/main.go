package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/warungpay/backend/internal/config"
	"github.com/warungpay/backend/internal/gateway"
	"github.com/warungpay/backend/internal/handler"
	"github.com/warungpay/backend/internal/logger"
	appMiddleware "github.com/warungpay/backend/internal/middleware"
	"github.com/warungpay/backend/internal/repository"
	"github.com/warungpay/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := logger.New(cfg.Production)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database error", zap.Error(err))
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		zlog.Fatal("migration error", zap.Error(err))
	}
	zlog.Info("database connected and migrated")

	// Wiring
	orderRepo := repository.NewOrderRepository(db)
	midtrans := gateway.NewClient(cfg.ServerKey, cfg.Production)

	paymentSvc := service.NewPaymentService(midtrans, orderRepo, cfg.BaseURL, zlog)
	notificationSvc := service.NewNotificationService(orderRepo, cfg.ServerKey, zlog)

	paymentHandler := handler.NewPaymentHandler(paymentSvc, zlog, cfg.Production)
	webhookHandler := handler.NewWebhookHandler(notificationSvc, zlog, cfg.Production)
	healthHandler := handler.NewHealthHandler(db)

	// Build router
	r := chi.NewRouter()

	r.Use(appMiddleware.Recovery(zlog))
	r.Use(appMiddleware.Logger(zlog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	r.Use(globalRL.Middleware())

	r.Get("/health", healthHandler.Check)
	r.Get("/api/payment/methods", paymentHandler.Methods)

	r.Post("/api/payment/create-transaction", paymentHandler.CreateTransaction)
	r.Get("/api/payment/status/{orderID}", paymentHandler.Status)

	// Gateway webhook: public, authenticated by its signature.
	r.Post("/api/payment/notification", webhookHandler.HandleNotification)

	// Management operations require a dashboard-issued token.
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(cfg.JWTSecret))
		r.Post("/api/payment/cancel/{orderID}", paymentHandler.Cancel)
		r.Post("/api/payment/refund/{orderID}", paymentHandler.Refund)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handler.JSON(w, http.StatusNotFound, handler.Envelope{Message: "Endpoint not found"})
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	zlog.Info("payment backend listening",
		zap.String("addr", addr),
		zap.Bool("production", cfg.Production),
	)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		zlog.Fatal("server error", zap.Error(err))
	}
}
