package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
)

type notificationService interface {
	ListNotifications(ctx context.Context, userId, limitStr, offsetStr string) ([]models.Notification, error)
}

// NotificationHandler - структура для обработки HTTP-запросов по уведомлениям.
type NotificationHandler struct {
	Service notificationService
	Logger  *log.Logger
	Timeout time.Duration
}

func NewNotificationHandler(service notificationService, logger *log.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{Service: service, Logger: logger, Timeout: timeout}
}

// GetNotifications обрабатывает запросы для получения уведомлений пользователя.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := mustActor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	notifications, err := h.Service.ListNotifications(ctx, actor.ID, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to retrieve notifications")
		return
	}
	respond(w, h.Logger, http.StatusOK, notifications)
}
