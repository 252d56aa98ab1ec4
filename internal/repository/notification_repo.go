package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository - интерфейс для работы с уведомлениями.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListUserNotifications(ctx context.Context, userId string, page models.Page) ([]models.Notification, error)
}

// PostgresNotificationRepository - реализация NotificationRepository для базы данных.
type PostgresNotificationRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresNotificationRepository создает новый экземпляр PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{DB: db}
}

// CreateNotification сохраняет уведомление.
func (r *PostgresNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}
	insertQuery := `INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(ctx, insertQuery, n.ID, n.UserID, n.Type, n.Title, n.Message, data, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListUserNotifications возвращает уведомления пользователя, новые первыми.
func (r *PostgresNotificationRepository) ListUserNotifications(ctx context.Context, userId string, page models.Page) ([]models.Notification, error) {
	limit, offset := pageArgs(page)
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
