package notify

import (
	"context"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/google/uuid"
)

// StoreDispatcher сохраняет уведомления в таблицу notifications.
type StoreDispatcher struct {
	Repo repository.NotificationRepository
}

// NewStoreDispatcher создает новый экземпляр StoreDispatcher.
func NewStoreDispatcher(repo repository.NotificationRepository) *StoreDispatcher {
	return &StoreDispatcher{Repo: repo}
}

func (d *StoreDispatcher) Notify(ctx context.Context, userID string, p Payload) error {
	return d.Repo.CreateNotification(ctx, &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      p.Type,
		Title:     p.Title,
		Message:   p.Message,
		Data:      p.Data,
		CreatedAt: time.Now().UTC(),
	})
}
