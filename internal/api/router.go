/**
 * @description
 * This file sets up the HTTP router for the banking service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, recovery, CORS and authentication.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the browser frontend.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the banking service.
func Routes(h *Handlers, auth *TokenAuthenticator) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public endpoints.
	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)
	r.Post("/contact", h.ContactHandler)
	r.Get("/payment-methods", h.ActivePaymentMethodsHandler)

	// Customer endpoints.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/dashboard", h.DashboardHandler)
		r.Get("/account/transactions", h.TransactionsHandler)

		r.Post("/loans/apply/personal-info", h.PersonalInfoHandler)
		r.Get("/loans/apply/draft", h.DraftHandler)
		r.Post("/loans/apply/details", h.LoanDetailsHandler)
		r.Get("/loans/confirmation", h.ConfirmationHandler)
		r.Get("/loans", h.UserLoansHandler)
		r.Get("/loans/{id}", h.UserLoanHandler)

		r.Post("/transfers", h.CreateTransferHandler)
		r.Get("/transfers", h.UserTransfersHandler)
		r.Get("/transfers/{id}", h.UserTransferHandler)
	})

	// Back-office endpoints.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Use(RequireStaff)

		r.Get("/admin/loans", h.AdminLoansHandler)
		r.Get("/admin/loans/counts", h.LoanCountsHandler)
		r.Get("/admin/loans/{id}", h.AdminLoanDetailHandler)
		r.Put("/admin/loans/{id}/status", h.UpdateLoanStatusHandler)

		r.Get("/admin/payments", h.AdminPaymentsHandler)
		r.Get("/admin/payments/{id}", h.AdminPaymentDetailHandler)
		r.Post("/admin/payments/{id}/verify", h.VerifyPaymentHandler)

		r.Get("/admin/transfers", h.AdminTransfersHandler)
		r.Get("/admin/transfers/{id}", h.AdminTransferDetailHandler)
		r.Put("/admin/transfers/{id}/status", h.UpdateTransferStatusHandler)

		r.Get("/admin/payment-methods", h.AdminPaymentMethodsHandler)
		r.Post("/admin/payment-methods", h.CreatePaymentMethodHandler)
		r.Put("/admin/payment-methods/{id}", h.UpdatePaymentMethodHandler)
		r.Delete("/admin/payment-methods/{id}", h.DeletePaymentMethodHandler)

		r.Get("/admin/settings", h.ListSettingsHandler)
		r.Put("/admin/settings/{name}", h.UpdateSettingHandler)

		r.Get("/admin/users", h.AdminUsersHandler)
		r.Put("/admin/users/{id}/balance", h.AdminSetBalanceHandler)
		r.Post("/admin/users/{id}/transactions", h.AdminPostTransactionHandler)

		r.Get("/admin/contact-messages", h.ContactMessagesHandler)
		r.Put("/admin/contact-messages/{id}/resolve", h.ResolveContactMessageHandler)
	})

	return r
}
