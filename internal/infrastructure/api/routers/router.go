package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mufasadev/ramp-reconciler/internal/di"
	"github.com/mufasadev/ramp-reconciler/internal/infrastructure/api/middlewares"
)

func NewRouter(container *di.Container) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewares.RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middlewares.Metrics)

	router.Get("/health", container.HealthHandler.Health)
	router.Handle("/metrics", promhttp.Handler())

	// Set up v1 routes with a path prefix
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/paystack", container.WebhookHandler.HandlePaystack)

		r.Route("/deposits", func(r chi.Router) {
			dh := container.DepositHandler
			r.Get("/", dh.ListDeposits)
			r.Get("/confirm", dh.ConfirmDeposit)
		})

		r.Get("/exchange/account", container.DepositHandler.AccountInfo)
	})

	return router
}
