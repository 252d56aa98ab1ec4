package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

const defaultHeartbeat = 15 * time.Second

type requestGetter interface {
	GetRequest(ctx context.Context, actor models.Actor, requestId string) (*models.Request, error)
}

// StreamHandler отдает изменения предложений как Server-Sent Events.
type StreamHandler struct {
	Feed      repository.Subscriber
	Requests  requestGetter
	Logger    *log.Logger
	Timeout   time.Duration
	Heartbeat time.Duration
}

func NewStreamHandler(feed repository.Subscriber, requests requestGetter, logger *log.Logger, timeout time.Duration) *StreamHandler {
	return &StreamHandler{
		Feed:      feed,
		Requests:  requests,
		Logger:    logger,
		Timeout:   timeout,
		Heartbeat: defaultHeartbeat,
	}
}

// offerFilter ограничивает поток тем, что пользователь вправе видеть:
// поставщик получает свои предложения, клиент - предложения по своей заявке.
func (h *StreamHandler) offerFilter(ctx context.Context, actor models.Actor, requestId string) (repository.ChangeFilter, error) {
	filter := repository.ChangeFilter{}
	if requestId != "" {
		filter["request_id"] = requestId
	}

	switch actor.Role {
	case models.VendorRole:
		filter["vendor_id"] = actor.ID
	case models.ClientRole:
		if requestId == "" {
			return nil, models.NewValidationError("requestId", "is required")
		}
		ctx, cancel := context.WithTimeout(ctx, h.Timeout)
		defer cancel()
		if _, err := h.Requests.GetRequest(ctx, actor, requestId); err != nil {
			return nil, err
		}
	case models.AdminRole:
	default:
		return nil, models.ErrForbidden
	}
	return filter, nil
}

// StreamOffers обрабатывает GET /api/offers/stream?requestId=...
func (h *StreamHandler) StreamOffers(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.SendErrorResponse(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	filter, err := h.offerFilter(r.Context(), actor, r.URL.Query().Get("requestId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to open offer stream")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	events := make(chan repository.ChangeEvent, 16)
	unsubscribe, err := h.Feed.Subscribe(ctx, "offer", filter, func(ev repository.ChangeEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	})
	if err != nil {
		cancel()
		handleError(w, h.Logger, err, "failed to open offer stream")
		return
	}
	// cancel раньше unsubscribe: иначе слушатель может зависнуть на отправке в events
	defer func() {
		cancel()
		unsubscribe()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				h.Logger.Printf("failed to encode change event %s: %v", ev.ID, err)
				continue
			}
			if _, err = fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", ev.Op, ev.ID, data); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
