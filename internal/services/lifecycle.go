package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/notify"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
)

// allowedDecisionTransition - допустимые переходы client_approval_status.
var allowedDecisionTransition = map[models.ApprovalStatus][]models.ApprovalStatus{
	models.ApprovalPending:  {models.ApprovalApproved, models.ApprovalRejected},
	models.ApprovalApproved: {},
	models.ApprovalRejected: {},
}

// OrderReconciler ставит в очередь повторное создание заказа по одобренному предложению.
type OrderReconciler interface {
	Enqueue(ctx context.Context, offerId string) error
}

// LifecycleService управляет решением клиента по предложению и созданием заказа.
//
// Запись решения и создание заказа - две независимые записи без общей транзакции.
// Решение записывается условным UPDATE (только из pending), заказ создается
// идемпотентно по offer_id. Если заказ создать не удалось, решение не откатывается:
// вызывающий получает *models.DependentWriteError и может повторить только создание заказа.
type LifecycleService struct {
	Offers       repository.OfferRepository
	Requests     repository.RequestRepository
	Orders       repository.OrderRepository
	Logger       *log.Logger
	notifier     *notify.BestEffort
	reconciler   OrderReconciler
	writeTimeout time.Duration
	now          func() time.Time
}

// NewLifecycleService создает новый экземпляр LifecycleService.
func NewLifecycleService(
	offers repository.OfferRepository,
	requests repository.RequestRepository,
	orders repository.OrderRepository,
	notifier *notify.BestEffort,
	logger *log.Logger,
	writeTimeout time.Duration,
) *LifecycleService {
	return &LifecycleService{
		Offers:       offers,
		Requests:     requests,
		Orders:       orders,
		Logger:       logger,
		notifier:     notifier,
		writeTimeout: writeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithReconciler подключает асинхронный повтор создания заказа.
func (s *LifecycleService) WithReconciler(reconciler OrderReconciler) *LifecycleService {
	s.reconciler = reconciler
	return s
}

// Decide записывает решение клиента по предложению.
func (s *LifecycleService) Decide(ctx context.Context, clientId, offerId string, decisionReq models.DecisionRequest) (*models.OfferDecision, error) {
	decision := decisionReq.Decision
	notes := strings.TrimSpace(decisionReq.Notes)

	if !utils.Contains(allowedDecisionTransition[models.ApprovalPending], decision) {
		return nil, models.NewValidationError("decision", "must be either 'approved' or 'rejected'")
	}
	if decision == models.ApprovalRejected && notes == "" {
		return nil, models.NewValidationError("notes", "rejection requires notes")
	}

	offer, err := s.Offers.GetOffer(ctx, offerId)
	if err != nil {
		return nil, err
	}
	request, err := s.Requests.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != clientId {
		return nil, fmt.Errorf("%w: only the request owner can decide on offers", models.ErrForbidden)
	}
	if !utils.Contains(allowedDecisionTransition[offer.ClientApprovalStatus], decision) {
		return nil, models.ErrAlreadyDecided
	}
	if decision == models.ApprovalApproved && !request.Biddable() {
		return nil, models.ErrIneligibleRequest
	}

	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	decided, err := s.Offers.DecideOffer(ctx, offerId, decision, notesPtr, s.now())
	if err != nil {
		return nil, err
	}

	result := &models.OfferDecision{Offer: decided}
	if decision == models.ApprovalApproved {
		order, err := s.createOrder(ctx, decided, request)
		if err != nil {
			s.Logger.Printf("offer %s approved but order creation failed: %v", decided.ID, err)
			s.enqueueReconcile(ctx, decided.ID)
			s.notifyVendor(ctx, decided, request)
			return result, &models.DependentWriteError{OfferID: decided.ID, Err: err}
		}
		result.Order = order
	}

	s.notifyVendor(ctx, decided, request)
	return result, nil
}

// RetryOrderCreation повторяет создание заказа по одобренному предложению.
// Повторный вызов возвращает уже созданный заказ.
func (s *LifecycleService) RetryOrderCreation(ctx context.Context, clientId, offerId string) (*models.Order, error) {
	offer, err := s.Offers.GetOffer(ctx, offerId)
	if err != nil {
		return nil, err
	}
	request, err := s.Requests.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != clientId {
		return nil, fmt.Errorf("%w: only the request owner can create the order", models.ErrForbidden)
	}
	if offer.ClientApprovalStatus != models.ApprovalApproved {
		return nil, fmt.Errorf("%w: offer is not approved", models.ErrForbidden)
	}

	order, err := s.createOrder(ctx, offer, request)
	if err != nil {
		return nil, &models.DependentWriteError{OfferID: offer.ID, Err: err}
	}
	return order, nil
}

// EnsureOrder создает заказ по одобренному предложению без проверки пользователя.
// Используется фоновым согласованием.
func (s *LifecycleService) EnsureOrder(ctx context.Context, offerId string) (*models.Order, error) {
	offer, err := s.Offers.GetOffer(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if offer.ClientApprovalStatus != models.ApprovalApproved {
		return nil, fmt.Errorf("%w: offer is not approved", models.ErrForbidden)
	}
	request, err := s.Requests.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	return s.createOrder(ctx, offer, request)
}

// PendingOrderOffers возвращает одобренные предложения, заказ по которым еще не создан.
func (s *LifecycleService) PendingOrderOffers(ctx context.Context) ([]models.Offer, error) {
	return s.Offers.ListOrderPending(ctx)
}

// createOrder выполняется на контексте, не зависящем от отмены запроса:
// решение уже записано, и уход клиента не должен прерывать создание заказа.
func (s *LifecycleService) createOrder(ctx context.Context, offer *models.Offer, request *models.Request) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	approvedAt := s.now()
	if offer.ClientApprovalDate != nil {
		approvedAt = *offer.ClientApprovalDate
	}
	order := &models.Order{
		ID:           uuid.New().String(),
		OfferID:      offer.ID,
		RequestID:    offer.RequestID,
		ClientID:     request.ClientID,
		VendorID:     offer.VendorID,
		Title:        offer.Title,
		Description:  offer.Description,
		Amount:       offer.Price,
		Currency:     offer.Currency,
		Status:       models.PendingOrder,
		DeliveryDate: approvedAt.AddDate(0, 0, offer.DeliveryTimeDays),
		CreatedAt:    s.now(),
	}

	saved, created, err := s.Orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if !created {
		s.Logger.Printf("order for offer %s already exists: %s", offer.ID, saved.ID)
	}
	if err = s.Offers.ClearOrderPending(ctx, offer.ID); err != nil {
		s.Logger.Printf("order %s created but marker on offer %s was not cleared: %v", saved.ID, offer.ID, err)
	}
	return saved, nil
}

func (s *LifecycleService) enqueueReconcile(ctx context.Context, offerId string) {
	if s.reconciler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.reconciler.Enqueue(ctx, offerId); err != nil {
		s.Logger.Printf("failed to enqueue order reconciliation for offer %s: %v", offerId, err)
	}
}

func (s *LifecycleService) notifyVendor(ctx context.Context, offer *models.Offer, request *models.Request) {
	p := notify.Payload{
		Type:    models.OfferApprovedNotification,
		Title:   "Offer approved",
		Message: fmt.Sprintf("Your offer %q for %q was approved", offer.Title, request.Title),
		Data: map[string]any{
			"offerId":   offer.ID,
			"requestId": request.ID,
		},
	}
	if offer.ClientApprovalStatus == models.ApprovalRejected {
		p.Type = models.OfferRejectedNotification
		p.Title = "Offer rejected"
		p.Message = fmt.Sprintf("Your offer %q for %q was rejected", offer.Title, request.Title)
	}
	if offer.ClientApprovalNotes != nil {
		p.Data["notes"] = *offer.ClientApprovalNotes
	}
	s.notifier.Send(ctx, offer.VendorID, p)
}
