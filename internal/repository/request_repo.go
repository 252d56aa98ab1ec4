package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const requestColumns = `id, client_id, title, description, category, location, urgency, budget_min, budget_max,
	currency, deadline, status, admin_approval_status, admin_notes, created_at`

// RequestFilter - условия выборки заявок. Пустые поля не ограничивают выборку.
type RequestFilter struct {
	ClientID        string
	AdminStatuses   []models.AdminApprovalStatus
	ExcludeStatuses []models.RequestStatus
}

// RequestRepository - интерфейс для работы с заявками.
type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.Request) error
	GetRequest(ctx context.Context, requestId string) (*models.Request, error)
	ListRequests(ctx context.Context, filter RequestFilter, page models.Page) ([]models.Request, error)
	ReviewRequest(ctx context.Context, requestId string, decision models.AdminApprovalStatus, notes *string) (*models.Request, error)
	UpdateRequestStatus(ctx context.Context, requestId string, from, to models.RequestStatus) (*models.Request, error)
}

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRequestRepository создаёт новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var request models.Request
	err := row.Scan(
		&request.ID,
		&request.ClientID,
		&request.Title,
		&request.Description,
		&request.Category,
		&request.Location,
		&request.Urgency,
		&request.BudgetMin,
		&request.BudgetMax,
		&request.Currency,
		&request.Deadline,
		&request.Status,
		&request.AdminApprovalStatus,
		&request.AdminNotes,
		&request.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CreateRequest сохраняет новую заявку.
func (r *PostgresRequestRepository) CreateRequest(ctx context.Context, request *models.Request) error {
	_, err := r.DB.Exec(ctx, `
       INSERT INTO request (id, client_id, title, description, category, location, urgency, budget_min, budget_max,
                            currency, deadline, status, admin_approval_status, created_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
   `,
		request.ID,
		request.ClientID,
		request.Title,
		request.Description,
		request.Category,
		request.Location,
		request.Urgency,
		request.BudgetMin,
		request.BudgetMax,
		request.Currency,
		request.Deadline,
		request.Status,
		request.AdminApprovalStatus,
		request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetRequest возвращает заявку по ID.
func (r *PostgresRequestRepository) GetRequest(ctx context.Context, requestId string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request WHERE id = $1`
	request, err := scanRequest(r.DB.QueryRow(ctx, query, requestId))
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return request, nil
}

// ListRequests возвращает заявки по фильтру, новые первыми.
func (r *PostgresRequestRepository) ListRequests(ctx context.Context, filter RequestFilter, page models.Page) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM request`
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.ClientID != "" {
		filters = append(filters, fmt.Sprintf("client_id = $%d", argIndex))
		args = append(args, filter.ClientID)
		argIndex++
	}

	if len(filter.AdminStatuses) > 0 {
		filters = append(filters, fmt.Sprintf("admin_approval_status = ANY($%d)", argIndex))
		args = append(args, pq.Array(toStrings(filter.AdminStatuses)))
		argIndex++
	}

	if len(filter.ExcludeStatuses) > 0 {
		filters = append(filters, fmt.Sprintf("status <> ALL($%d)", argIndex))
		args = append(args, pq.Array(toStrings(filter.ExcludeStatuses)))
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	limit, offset := pageArgs(page)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

// ReviewRequest записывает решение администратора, только если заявка еще на модерации.
func (r *PostgresRequestRepository) ReviewRequest(ctx context.Context, requestId string, decision models.AdminApprovalStatus, notes *string) (*models.Request, error) {
	updateQuery := `
		UPDATE request SET admin_approval_status = $2, admin_notes = $3
		WHERE id = $1 AND admin_approval_status = $4
		RETURNING ` + requestColumns
	request, err := scanRequest(r.DB.QueryRow(ctx, updateQuery, requestId, decision, notes, models.AdminPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to review request: %w", err)
	}
	return request, nil
}

// UpdateRequestStatus меняет статус заявки, только если текущий статус равен from.
func (r *PostgresRequestRepository) UpdateRequestStatus(ctx context.Context, requestId string, from, to models.RequestStatus) (*models.Request, error) {
	updateQuery := `
		UPDATE request SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING ` + requestColumns
	request, err := scanRequest(r.DB.QueryRow(ctx, updateQuery, requestId, to, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrForbidden
		}
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}
	return request, nil
}
