package services

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// OrderService - чтение заказов с проверкой доступа.
type OrderService struct {
	Repo repository.OrderRepository
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{Repo: repo}
}

// ListOrders возвращает заказы пользователя: клиенту - его заказы, поставщику - его, администратору - все.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Order, error) {
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}

	var filter repository.OrderFilter
	switch actor.Role {
	case models.AdminRole:
	case models.VendorRole:
		filter.VendorID = actor.ID
	case models.ClientRole:
		filter.ClientID = actor.ID
	default:
		return nil, models.ErrForbidden
	}
	return s.Repo.ListOrders(ctx, filter, page)
}

// GetOrder возвращает заказ его участнику или администратору.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, orderId string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.AdminRole && order.ClientID != actor.ID && order.VendorID != actor.ID {
		return nil, models.ErrForbidden
	}
	return order, nil
}
