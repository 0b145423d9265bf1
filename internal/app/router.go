package app

import (
	"github.com/comanda/backoffice/internal/handlers"
	"github.com/comanda/backoffice/internal/utils/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// setupRouter creates and configures the router.
func setupRouter(deps *dependencies, jwtManager *jwt.Manager, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	setupMiddleware(r, logger)
	setupRoutes(r, deps, jwtManager)

	return r
}

// setupMiddleware installs the global middleware chain.
func setupMiddleware(r *chi.Mux, logger *zap.Logger) {
	r.Use(handlers.RequestIDMiddleware())
	r.Use(handlers.LoggingMiddleware(logger))
	r.Use(handlers.RecoveryMiddleware(logger))
	r.Use(middleware.Compress(5))
}

// setupRoutes registers the application's routes.
func setupRoutes(r *chi.Mux, deps *dependencies, jwtManager *jwt.Manager) {
	// Health check endpoints
	r.Get("/health", deps.handlers.health.Health)
	r.Get("/ready", deps.handlers.health.Ready)

	// Public endpoints
	r.Post("/api/auth/register", deps.handlers.auth.Register)
	r.Post("/api/auth/login", deps.handlers.auth.Login)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(jwtManager))
		r.Post("/api/checkout/quote", deps.handlers.checkout.Quote)
		r.Post("/api/checkout/settle", deps.handlers.checkout.Settle)
		r.Get("/api/checkout/records/{id}", deps.handlers.checkout.GetRecord)
		r.Post("/api/coupons/validate", deps.handlers.checkout.ValidateCoupon)
		r.Get("/api/payment-methods", deps.handlers.checkout.ListPaymentMethods)
	})
}
