package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/notify"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
)

const defaultCurrency = "USD"

// allowedReviewTransition - допустимые переходы admin_approval_status.
var allowedReviewTransition = map[models.AdminApprovalStatus][]models.AdminApprovalStatus{
	models.AdminPending:  {models.AdminApproved, models.AdminRejected},
	models.AdminApproved: {},
	models.AdminRejected: {},
}

// RequestService - бизнес-логика заявок клиентов и их модерации.
type RequestService struct {
	Repo     repository.RequestRepository
	Offers   repository.OfferRepository
	notifier *notify.BestEffort
	now      func() time.Time
}

// NewRequestService создаёт новый экземпляр RequestService.
func NewRequestService(repo repository.RequestRepository, offers repository.OfferRepository, notifier *notify.BestEffort) *RequestService {
	return &RequestService{
		Repo:     repo,
		Offers:   offers,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateRequest создает новую заявку клиента. Заявка уходит на модерацию.
func (s *RequestService) CreateRequest(ctx context.Context, clientId string, requestReq models.RequestRequest) (*models.Request, error) {
	if clientId == "" {
		return nil, models.NewValidationError("clientId", "is required")
	}
	requestReq.Title = strings.TrimSpace(requestReq.Title)
	requestReq.Description = strings.TrimSpace(requestReq.Description)
	requestReq.Category = strings.TrimSpace(requestReq.Category)
	requestReq.Currency = strings.ToUpper(strings.TrimSpace(requestReq.Currency))
	if err := validateStruct(requestReq); err != nil {
		return nil, err
	}
	if requestReq.BudgetMin != nil {
		if err := validateAmount("budgetMin", *requestReq.BudgetMin, true); err != nil {
			return nil, err
		}
	}
	if requestReq.BudgetMax != nil {
		if err := validateAmount("budgetMax", *requestReq.BudgetMax, true); err != nil {
			return nil, err
		}
	}
	if requestReq.BudgetMin != nil && requestReq.BudgetMax != nil && requestReq.BudgetMin.GreaterThan(*requestReq.BudgetMax) {
		return nil, models.NewValidationError("budgetMin", "must not exceed budgetMax")
	}

	urgency := requestReq.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	currency := requestReq.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	request := &models.Request{
		ID:                  uuid.New().String(),
		ClientID:            clientId,
		Title:               requestReq.Title,
		Description:         requestReq.Description,
		Category:            requestReq.Category,
		Location:            requestReq.Location,
		Urgency:             urgency,
		BudgetMin:           requestReq.BudgetMin,
		BudgetMax:           requestReq.BudgetMax,
		Currency:            currency,
		Deadline:            requestReq.Deadline,
		Status:              models.OpenRequest,
		AdminApprovalStatus: models.AdminPending,
		CreatedAt:           s.now(),
	}
	if err := s.Repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// ReviewRequest записывает решение администратора по заявке.
func (s *RequestService) ReviewRequest(ctx context.Context, actor models.Actor, requestId string, reviewReq models.ReviewRequest) (*models.Request, error) {
	if actor.Role != models.AdminRole {
		return nil, fmt.Errorf("%w: only admins can review requests", models.ErrForbidden)
	}
	if !utils.Contains(allowedReviewTransition[models.AdminPending], reviewReq.Decision) {
		return nil, models.NewValidationError("decision", "must be either 'approved' or 'rejected'")
	}

	current, err := s.Repo.GetRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if !utils.Contains(allowedReviewTransition[current.AdminApprovalStatus], reviewReq.Decision) {
		return nil, models.ErrAlreadyReviewed
	}

	var notes *string
	if n := strings.TrimSpace(reviewReq.Notes); n != "" {
		notes = &n
	}
	reviewed, err := s.Repo.ReviewRequest(ctx, requestId, reviewReq.Decision, notes)
	if err != nil {
		return nil, err
	}

	p := notify.Payload{
		Type:    models.RequestApprovedNotification,
		Title:   "Request approved",
		Message: fmt.Sprintf("Your request %q is now open for offers", reviewed.Title),
		Data:    map[string]any{"requestId": reviewed.ID},
	}
	if reviewed.AdminApprovalStatus == models.AdminRejected {
		p.Type = models.RequestRejectedNotification
		p.Title = "Request rejected"
		p.Message = fmt.Sprintf("Your request %q was rejected", reviewed.Title)
	}
	s.notifier.Send(ctx, reviewed.ClientID, p)
	return reviewed, nil
}

// CancelRequest отменяет открытую заявку ее владельцем.
func (s *RequestService) CancelRequest(ctx context.Context, clientId, requestId string) (*models.Request, error) {
	current, err := s.Repo.GetRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if current.ClientID != clientId {
		return nil, fmt.Errorf("%w: only the request owner can cancel it", models.ErrForbidden)
	}
	if current.Status != models.OpenRequest {
		return nil, fmt.Errorf("%w: request is %s", models.ErrForbidden, current.Status)
	}
	return s.Repo.UpdateRequestStatus(ctx, requestId, models.OpenRequest, models.CancelledRequest)
}

// GetRequest возвращает заявку. Поставщики видят только одобренные заявки.
func (s *RequestService) GetRequest(ctx context.Context, actor models.Actor, requestId string) (*models.Request, error) {
	request, err := s.Repo.GetRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.Role == models.AdminRole, request.ClientID == actor.ID:
		return request, nil
	case actor.Role == models.VendorRole && request.AdminApprovalStatus == models.AdminApproved:
		return request, nil
	}
	return nil, models.ErrForbidden
}

// ListClientRequests получает список заявок клиента.
func (s *RequestService) ListClientRequests(ctx context.Context, clientId, limitStr, offsetStr string) ([]models.Request, error) {
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	return s.Repo.ListRequests(ctx, repository.RequestFilter{ClientID: clientId}, page)
}

// ListPendingReview получает заявки, ожидающие модерации.
func (s *RequestService) ListPendingReview(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Request, error) {
	if actor.Role != models.AdminRole {
		return nil, models.ErrForbidden
	}
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	filter := repository.RequestFilter{AdminStatuses: []models.AdminApprovalStatus{models.AdminPending}}
	return s.Repo.ListRequests(ctx, filter, page)
}

// EligibleForVendor возвращает заявки, по которым поставщик еще может подать предложение.
func (s *RequestService) EligibleForVendor(ctx context.Context, vendorId string) ([]models.Request, error) {
	filter := repository.RequestFilter{
		AdminStatuses:   []models.AdminApprovalStatus{models.AdminApproved},
		ExcludeStatuses: []models.RequestStatus{models.CompletedRequest},
	}
	all, err := s.Repo.ListRequests(ctx, filter, models.Page{})
	if err != nil {
		return nil, err
	}
	offers, err := s.Offers.ListVendorOffers(ctx, vendorId, models.Page{})
	if err != nil {
		return nil, err
	}
	eligible := EligibleRequests(all, vendorId, offers)
	// клиент не может подавать предложения на свои заявки
	out := eligible[:0]
	for _, r := range eligible {
		if r.ClientID != vendorId {
			out = append(out, r)
		}
	}
	return out, nil
}
