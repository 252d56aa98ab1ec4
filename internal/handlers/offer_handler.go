package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"

	"github.com/go-chi/chi/v5"
)

type offerService interface {
	SubmitOffer(ctx context.Context, vendorId string, offerReq models.OfferRequest) (*models.Offer, error)
	DeleteOffer(ctx context.Context, requesterId, offerId string) error
	GetOffer(ctx context.Context, actor models.Actor, offerId string) (*models.Offer, error)
	ListVendorOffers(ctx context.Context, vendorId, limitStr, offsetStr string) ([]models.Offer, error)
	ListRequestOffers(ctx context.Context, actor models.Actor, requestId, limitStr, offsetStr string) ([]models.Offer, error)
	VendorStats(ctx context.Context, vendorId string) (services.OfferStats, error)
}

type lifecycleService interface {
	Decide(ctx context.Context, clientId, offerId string, decisionReq models.DecisionRequest) (*models.OfferDecision, error)
	RetryOrderCreation(ctx context.Context, clientId, offerId string) (*models.Order, error)
}

// OfferHandler - структура для обработки HTTP-запросов по предложениям.
type OfferHandler struct {
	Service   offerService
	Lifecycle lifecycleService
	Logger    *log.Logger
	Timeout   time.Duration
}

// NewOfferHandler создает новый экземпляр OfferHandler.
func NewOfferHandler(service offerService, lifecycle lifecycleService, logger *log.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Service:   service,
		Lifecycle: lifecycle,
		Logger:    logger,
		Timeout:   timeout,
	}
}

// CreateOffer обрабатывает запросы для создания предложения.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var offerReq models.OfferRequest
	if err := decodeBody(r, &offerReq); err != nil {
		handleError(w, h.Logger, err, "")
		return
	}

	offer, err := h.Service.SubmitOffer(ctx, actor.ID, offerReq)
	if err != nil {
		handleError(w, h.Logger, err, "failed to submit offer")
		return
	}
	respond(w, h.Logger, http.StatusCreated, offer)
}

// GetMyOffers обрабатывает запросы для получения предложений поставщика.
func (h *OfferHandler) GetMyOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offers, err := h.Service.ListVendorOffers(ctx, actor.ID, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve offers")
		return
	}
	respond(w, h.Logger, http.StatusOK, offers)
}

// GetStats обрабатывает запросы для получения сводки по предложениям поставщика.
func (h *OfferHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	stats, err := h.Service.VendorStats(ctx, actor.ID)
	if err != nil {
		handleError(w, h.Logger, err, "failed to compute offer stats")
		return
	}
	respond(w, h.Logger, http.StatusOK, stats)
}

// GetRequestOffers обрабатывает запросы клиента для получения предложений по заявке.
func (h *OfferHandler) GetRequestOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offers, err := h.Service.ListRequestOffers(ctx, actor, chi.URLParam(r, "requestId"), r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve offers for request")
		return
	}
	respond(w, h.Logger, http.StatusOK, offers)
}

// GetOffer обрабатывает запросы для получения предложения.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offer, err := h.Service.GetOffer(ctx, actor, chi.URLParam(r, "offerId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve offer")
		return
	}
	respond(w, h.Logger, http.StatusOK, offer)
}

// DeleteOffer обрабатывает удаление нерассмотренного предложения.
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	if err := h.Service.DeleteOffer(ctx, actor.ID, chi.URLParam(r, "offerId")); err != nil {
		handleError(w, h.Logger, err, "failed to delete offer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitDecision обрабатывает решение клиента по предложению.
// Если решение записано, а заказ создать не удалось, отвечает 424 с offerId для повтора.
func (h *OfferHandler) SubmitDecision(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var decisionReq models.DecisionRequest
	if err := decodeBody(r, &decisionReq); err != nil {
		handleError(w, h.Logger, err, "")
		return
	}

	result, err := h.Lifecycle.Decide(ctx, actor.ID, chi.URLParam(r, "offerId"), decisionReq)
	if err != nil {
		handleError(w, h.Logger, err, "failed to submit decision")
		return
	}
	respond(w, h.Logger, http.StatusOK, result)
}

// CreateOrder повторяет создание заказа по одобренному предложению.
func (h *OfferHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	order, err := h.Lifecycle.RetryOrderCreation(ctx, actor.ID, chi.URLParam(r, "offerId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to create order")
		return
	}
	respond(w, h.Logger, http.StatusOK, order)
}
