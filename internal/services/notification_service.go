package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// NotificationService - чтение уведомлений пользователя.
type NotificationService struct {
	Repo repository.NotificationRepository
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

// ListNotifications получает уведомления пользователя.
func (s *NotificationService) ListNotifications(ctx context.Context, userId, limitStr, offsetStr string) ([]models.Notification, error) {
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	return s.Repo.ListUserNotifications(ctx, userId, page)
}
