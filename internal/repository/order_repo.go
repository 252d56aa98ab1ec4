package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, offer_id, request_id, client_id, vendor_id, title, description, amount, currency,
	status, delivery_date, created_at`

// OrderFilter - условия выборки заказов.
type OrderFilter struct {
	ClientID string
	VendorID string
}

// OrderRepository - интерфейс для работы с заказами.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error)
	GetOrder(ctx context.Context, orderId string) (*models.Order, error)
	GetOrderByOffer(ctx context.Context, offerId string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter, page models.Page) ([]models.Order, error)
}

// PostgresOrderRepository - реализация OrderRepository для базы данных.
type PostgresOrderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOrderRepository создает новый экземпляр PostgresOrderRepository.
func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.OfferID,
		&order.RequestID,
		&order.ClientID,
		&order.VendorID,
		&order.Title,
		&order.Description,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.DeliveryDate,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder создает заказ по предложению. Повторный вызов для того же offer_id
// возвращает уже существующий заказ и created = false.
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	insertQuery := `
		INSERT INTO orders (id, offer_id, request_id, client_id, vendor_id, title, description, amount, currency,
		                    status, delivery_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (offer_id) DO NOTHING
		RETURNING ` + orderColumns
	created, err := scanOrder(r.DB.QueryRow(
		ctx,
		insertQuery,
		order.ID,
		order.OfferID,
		order.RequestID,
		order.ClientID,
		order.VendorID,
		order.Title,
		order.Description,
		order.Amount,
		order.Currency,
		order.Status,
		order.DeliveryDate,
		order.CreatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert order: %w", err)
	}

	existing, err := r.GetOrderByOffer(ctx, order.OfferID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetOrder возвращает заказ по ID.
func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orderId string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.DB.QueryRow(ctx, query, orderId))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// GetOrderByOffer возвращает заказ, созданный по предложению.
func (r *PostgresOrderRepository) GetOrderByOffer(ctx context.Context, offerId string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE offer_id = $1`
	order, err := scanOrder(r.DB.QueryRow(ctx, query, offerId))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by offer: %w", err)
	}
	return order, nil
}

// ListOrders возвращает заказы клиента или поставщика, новые первыми.
func (r *PostgresOrderRepository) ListOrders(ctx context.Context, filter OrderFilter, page models.Page) ([]models.Order, error) {
	limit, offset := pageArgs(page)
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR client_id = $1) AND ($2 = '' OR vendor_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.DB.Query(ctx, query, filter.ClientID, filter.VendorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}
