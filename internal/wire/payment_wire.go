package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/payment", func(r chi.Router) {
		// GET /api/payment/verify?tx_ref= - checkout return URL
		r.Get("/verify", paymentHandler.VerifyReturn)

		// POST /api/payment/verify - polling clients
		r.Post("/verify", paymentHandler.Verify)

		// POST /api/payment/webhook - gateway callback, signed
		r.Post("/webhook", paymentHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthSession(repo.Session, log))

			// POST /api/payment/initiate - start checkout for own booking
			r.Post("/initiate", paymentHandler.Initiate)

			// GET /api/payment/{transaction_id} - payment status for own booking
			r.Get("/{transaction_id}", paymentHandler.GetByTransactionID)
		})
	})
}
