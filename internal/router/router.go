package router

import (
	"log"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Requests      *handlers.RequestHandler
	Offers        *handlers.OfferHandler
	Orders        *handlers.OrderHandler
	Notifications *handlers.NotificationHandler
	Stream        *handlers.StreamHandler
}

func InitRoutes(h Handlers, tokens handlers.ActorParser, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", handlers.PingHandler)

	r.Group(func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(tokens, logger))

		clientOnly := handlers.RequireRole(models.ClientRole)
		vendorOnly := handlers.RequireRole(models.VendorRole)
		adminOnly := handlers.RequireRole(models.AdminRole)

		r.Route("/api/requests", func(r chi.Router) {
			r.With(clientOnly).Post("/", h.Requests.CreateRequest)
			r.With(clientOnly).Get("/my", h.Requests.GetMyRequests)
			r.With(vendorOnly).Get("/eligible", h.Requests.GetEligibleRequests)
			r.With(adminOnly).Get("/pending", h.Requests.GetPendingRequests)
			r.Get("/{requestId}", h.Requests.GetRequest)
			r.With(adminOnly).Put("/{requestId}/review", h.Requests.ReviewRequest)
			r.With(clientOnly).Put("/{requestId}/cancel", h.Requests.CancelRequest)
			r.Get("/{requestId}/offers", h.Offers.GetRequestOffers)
		})

		r.Route("/api/offers", func(r chi.Router) {
			r.With(vendorOnly).Post("/", h.Offers.CreateOffer)
			r.With(vendorOnly).Get("/my", h.Offers.GetMyOffers)
			r.With(vendorOnly).Get("/stats", h.Offers.GetStats)
			r.Get("/stream", h.Stream.StreamOffers)
			r.Get("/{offerId}", h.Offers.GetOffer)
			r.With(vendorOnly).Delete("/{offerId}", h.Offers.DeleteOffer)
			r.With(clientOnly).Put("/{offerId}/decision", h.Offers.SubmitDecision)
			r.With(clientOnly).Post("/{offerId}/order", h.Offers.CreateOrder)
		})

		r.Get("/api/orders", h.Orders.GetOrders)
		r.Get("/api/orders/{orderId}", h.Orders.GetOrder)
		r.Get("/api/notifications", h.Notifications.GetNotifications)
	})

	return r
}
