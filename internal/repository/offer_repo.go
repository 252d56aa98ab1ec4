package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const offerColumns = `id, request_id, vendor_id, title, description, price, currency, delivery_time_days,
	status, client_approval_status, client_approval_notes, client_approval_date, order_pending, created_at`

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offer *models.Offer) error
	GetOffer(ctx context.Context, offerId string) (*models.Offer, error)
	FindVendorOffer(ctx context.Context, vendorId, requestId string) (*models.Offer, error)
	ListVendorOffers(ctx context.Context, vendorId string, page models.Page) ([]models.Offer, error)
	ListRequestOffers(ctx context.Context, requestId string, page models.Page) ([]models.Offer, error)
	DecideOffer(ctx context.Context, offerId string, decision models.ApprovalStatus, notes *string, decidedAt time.Time) (*models.Offer, error)
	DeletePendingOffer(ctx context.Context, offerId, vendorId string) (bool, error)
	ClearOrderPending(ctx context.Context, offerId string) error
	ListOrderPending(ctx context.Context) ([]models.Offer, error)
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOfferRepository создает новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var offer models.Offer
	err := row.Scan(
		&offer.ID,
		&offer.RequestID,
		&offer.VendorID,
		&offer.Title,
		&offer.Description,
		&offer.Price,
		&offer.Currency,
		&offer.DeliveryTimeDays,
		&offer.Status,
		&offer.ClientApprovalStatus,
		&offer.ClientApprovalNotes,
		&offer.ClientApprovalDate,
		&offer.OrderPending,
		&offer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func collectOffers(rows pgx.Rows) ([]models.Offer, error) {
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

// CreateOffer сохраняет новое предложение.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offer *models.Offer) error {
	insertQuery := `INSERT INTO offer (id, request_id, vendor_id, title, description, price, currency, delivery_time_days,
                   status, client_approval_status, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		offer.ID,
		offer.RequestID,
		offer.VendorID,
		offer.Title,
		offer.Description,
		offer.Price,
		offer.Currency,
		offer.DeliveryTimeDays,
		offer.Status,
		offer.ClientApprovalStatus,
		offer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "offer_vendor_request_key") {
			return models.ErrDuplicateOffer
		}
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

// GetOffer возвращает предложение по ID.
func (r *PostgresOfferRepository) GetOffer(ctx context.Context, offerId string) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offer WHERE id = $1`
	offer, err := scanOffer(r.DB.QueryRow(ctx, query, offerId))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

// FindVendorOffer возвращает предложение поставщика по заявке либо ErrNotFound.
func (r *PostgresOfferRepository) FindVendorOffer(ctx context.Context, vendorId, requestId string) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offer WHERE vendor_id = $1 AND request_id = $2`
	offer, err := scanOffer(r.DB.QueryRow(ctx, query, vendorId, requestId))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find vendor offer: %w", err)
	}
	return offer, nil
}

// ListVendorOffers возвращает предложения поставщика, новые первыми.
func (r *PostgresOfferRepository) ListVendorOffers(ctx context.Context, vendorId string, page models.Page) ([]models.Offer, error) {
	limit, offset := pageArgs(page)
	query := `
		SELECT ` + offerColumns + `
		FROM offer
		WHERE vendor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, vendorId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor offers: %w", err)
	}
	return collectOffers(rows)
}

// ListRequestOffers возвращает предложения по заявке, новые первыми.
func (r *PostgresOfferRepository) ListRequestOffers(ctx context.Context, requestId string, page models.Page) ([]models.Offer, error) {
	limit, offset := pageArgs(page)
	query := `
		SELECT ` + offerColumns + `
		FROM offer
		WHERE request_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, requestId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list request offers: %w", err)
	}
	return collectOffers(rows)
}

// DecideOffer записывает решение клиента, только если предложение еще не рассмотрено.
// При одобрении выставляет order_pending до создания заказа.
func (r *PostgresOfferRepository) DecideOffer(ctx context.Context, offerId string, decision models.ApprovalStatus, notes *string, decidedAt time.Time) (*models.Offer, error) {
	status := models.RejectedOffer
	if decision == models.ApprovalApproved {
		status = models.AcceptedOffer
	}
	updateQuery := `
		UPDATE offer
		SET client_approval_status = $2,
		    client_approval_notes = $3,
		    client_approval_date = $4,
		    status = $5,
		    order_pending = $6
		WHERE id = $1 AND client_approval_status = $7
		RETURNING ` + offerColumns
	offer, err := scanOffer(r.DB.QueryRow(
		ctx,
		updateQuery,
		offerId,
		decision,
		notes,
		decidedAt,
		status,
		decision == models.ApprovalApproved,
		models.ApprovalPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to decide offer: %w", err)
	}
	return offer, nil
}

// DeletePendingOffer удаляет нерассмотренное предложение поставщика. Возвращает false, если условие не выполнено.
func (r *PostgresOfferRepository) DeletePendingOffer(ctx context.Context, offerId, vendorId string) (bool, error) {
	deleteQuery := `DELETE FROM offer WHERE id = $1 AND vendor_id = $2 AND client_approval_status = $3`
	tag, err := r.DB.Exec(ctx, deleteQuery, offerId, vendorId, models.ApprovalPending)
	if err != nil {
		return false, fmt.Errorf("failed to delete offer: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearOrderPending снимает отметку незавершенного создания заказа.
func (r *PostgresOfferRepository) ClearOrderPending(ctx context.Context, offerId string) error {
	_, err := r.DB.Exec(ctx, `UPDATE offer SET order_pending = FALSE WHERE id = $1`, offerId)
	if err != nil {
		return fmt.Errorf("failed to clear order marker: %w", err)
	}
	return nil
}

// ListOrderPending возвращает одобренные предложения, для которых заказ еще не создан.
func (r *PostgresOfferRepository) ListOrderPending(ctx context.Context) ([]models.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offer
		WHERE order_pending AND client_approval_status = $1
		ORDER BY client_approval_date`
	rows, err := r.DB.Query(ctx, query, models.ApprovalApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers awaiting orders: %w", err)
	}
	return collectOffers(rows)
}
