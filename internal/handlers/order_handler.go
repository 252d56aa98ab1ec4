package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/go-chi/chi/v5"
)

type orderService interface {
	ListOrders(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Order, error)
	GetOrder(ctx context.Context, actor models.Actor, orderId string) (*models.Order, error)
}

// OrderHandler - структура для обработки HTTP-запросов по заказам.
type OrderHandler struct {
	Service orderService
	Logger  *log.Logger
	Timeout time.Duration
}

func NewOrderHandler(service orderService, logger *log.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{Service: service, Logger: logger, Timeout: timeout}
}

// GetOrders обрабатывает запросы для получения заказов пользователя.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orders, err := h.Service.ListOrders(ctx, actor, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve orders")
		return
	}
	respond(w, h.Logger, http.StatusOK, orders)
}

// GetOrder обрабатывает запросы для получения заказа.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	order, err := h.Service.GetOrder(ctx, actor, chi.URLParam(r, "orderId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve order")
		return
	}
	respond(w, h.Logger, http.StatusOK, order)
}
