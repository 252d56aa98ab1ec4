package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/go-chi/chi/v5"
)

type requestService interface {
	CreateRequest(ctx context.Context, clientId string, requestReq models.RequestRequest) (*models.Request, error)
	ReviewRequest(ctx context.Context, actor models.Actor, requestId string, reviewReq models.ReviewRequest) (*models.Request, error)
	CancelRequest(ctx context.Context, clientId, requestId string) (*models.Request, error)
	GetRequest(ctx context.Context, actor models.Actor, requestId string) (*models.Request, error)
	ListClientRequests(ctx context.Context, clientId, limitStr, offsetStr string) ([]models.Request, error)
	ListPendingReview(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Request, error)
	EligibleForVendor(ctx context.Context, vendorId string) ([]models.Request, error)
}

// RequestHandler - структура для обработки HTTP-запросов по заявкам.
type RequestHandler struct {
	Service requestService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRequestHandler создает новый экземпляр RequestHandler.
func NewRequestHandler(service requestService, logger *log.Logger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateRequest обрабатывает запросы для создания заявки.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var requestReq models.RequestRequest
	if err := decodeBody(r, &requestReq); err != nil {
		handleError(w, h.Logger, err, "")
		return
	}

	request, err := h.Service.CreateRequest(ctx, actor.ID, requestReq)
	if err != nil {
		handleError(w, h.Logger, err, "failed to create request")
		return
	}
	respond(w, h.Logger, http.StatusCreated, request)
}

// GetMyRequests обрабатывает запросы для получения заявок клиента.
func (h *RequestHandler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requests, err := h.Service.ListClientRequests(ctx, actor.ID, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve requests")
		return
	}
	respond(w, h.Logger, http.StatusOK, requests)
}

// GetPendingRequests обрабатывает запросы администратора для получения заявок на модерации.
func (h *RequestHandler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requests, err := h.Service.ListPendingReview(ctx, actor, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve requests")
		return
	}
	respond(w, h.Logger, http.StatusOK, requests)
}

// GetEligibleRequests обрабатывает запросы поставщика для получения заявок, открытых для предложений.
func (h *RequestHandler) GetEligibleRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requests, err := h.Service.EligibleForVendor(ctx, actor.ID)
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve requests")
		return
	}
	respond(w, h.Logger, http.StatusOK, requests)
}

// GetRequest обрабатывает запросы для получения заявки.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	request, err := h.Service.GetRequest(ctx, actor, chi.URLParam(r, "requestId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve request")
		return
	}
	respond(w, h.Logger, http.StatusOK, request)
}

// ReviewRequest обрабатывает решение администратора по заявке.
func (h *RequestHandler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var reviewReq models.ReviewRequest
	if err := decodeBody(r, &reviewReq); err != nil {
		handleError(w, h.Logger, err, "")
		return
	}

	request, err := h.Service.ReviewRequest(ctx, actor, chi.URLParam(r, "requestId"), reviewReq)
	if err != nil {
		handleError(w, h.Logger, err, "failed to review request")
		return
	}
	respond(w, h.Logger, http.StatusOK, request)
}

// CancelRequest обрабатывает отмену заявки клиентом.
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	request, err := h.Service.CancelRequest(ctx, actor.ID, chi.URLParam(r, "requestId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to cancel request")
		return
	}
	respond(w, h.Logger, http.StatusOK, request)
}
