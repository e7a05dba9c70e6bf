package httpinterface

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns the routes of the REST API. The metrics endpoint is
// served only if a gatherer is given.
func NewRouter(h *Handler, hub *Hub, gatherer prometheus.Gatherer) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))

	router.Route("/v1", func(r chi.Router) {
		r.Get("/orderbook", h.GetOrderBook)

		r.Post("/orders/market", h.SubmitMarketOrder)
		r.Post("/orders/limit", h.SubmitLimitOrder)

		r.Get("/swaps", h.ListSwaps)
		r.Post("/swaps/{uuid}/hide", h.HideSwap)
		r.Delete("/swaps/{uuid}", h.RemoveSwap)

		r.Post("/private-orders", h.SubmitPrivateOrder)
		r.Get("/private-orders", h.ListPrivateOrders)
		r.Get("/private-orders/{uuid}", h.GetPrivateOrder)
		r.Post("/private-orders/{uuid}/cancel", h.CancelPrivateOrder)
		r.Get("/private-orders/{uuid}/report", h.GetRecoveryReport)

		r.Post("/webhooks", h.AddWebhook)
		r.Get("/webhooks", h.ListWebhooks)
		r.Delete("/webhooks/{id}", h.RemoveWebhook)

		if hub != nil {
			r.Get("/events", hub.ServeHTTP)
		}
	})

	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return router
}
