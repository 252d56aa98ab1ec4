package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/notify"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/utils"

	"github.com/google/uuid"
)

// OfferService - бизнес-логика предложений поставщиков.
type OfferService struct {
	Offers   repository.OfferRepository
	Requests repository.RequestRepository
	notifier *notify.BestEffort
	now      func() time.Time
}

// NewOfferService создает новый экземпляр OfferService.
func NewOfferService(offers repository.OfferRepository, requests repository.RequestRepository, notifier *notify.BestEffort) *OfferService {
	return &OfferService{
		Offers:   offers,
		Requests: requests,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitOffer создает предложение поставщика по заявке.
func (s *OfferService) SubmitOffer(ctx context.Context, vendorId string, offerReq models.OfferRequest) (*models.Offer, error) {
	if vendorId == "" {
		return nil, models.NewValidationError("vendorId", "is required")
	}
	offerReq.RequestID = strings.TrimSpace(offerReq.RequestID)
	offerReq.Title = strings.TrimSpace(offerReq.Title)
	offerReq.Description = strings.TrimSpace(offerReq.Description)
	offerReq.Currency = strings.ToUpper(strings.TrimSpace(offerReq.Currency))
	if err := validateStruct(offerReq); err != nil {
		return nil, err
	}
	if err := validateAmount("price", offerReq.Price, false); err != nil {
		return nil, err
	}

	request, err := s.Requests.GetRequest(ctx, offerReq.RequestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID == vendorId {
		return nil, fmt.Errorf("%w: cannot bid on your own request", models.ErrForbidden)
	}
	if !request.Biddable() {
		return nil, models.ErrIneligibleRequest
	}

	_, err = s.Offers.FindVendorOffer(ctx, vendorId, request.ID)
	if err == nil {
		return nil, models.ErrDuplicateOffer
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	currency := offerReq.Currency
	if currency == "" {
		currency = request.Currency
	}
	offer := &models.Offer{
		ID:                   uuid.New().String(),
		RequestID:            request.ID,
		VendorID:             vendorId,
		Title:                offerReq.Title,
		Description:          offerReq.Description,
		Price:                offerReq.Price,
		Currency:             currency,
		DeliveryTimeDays:     offerReq.DeliveryTimeDays,
		Status:               models.PendingOffer,
		ClientApprovalStatus: models.ApprovalPending,
		CreatedAt:            s.now(),
	}
	if err = s.Offers.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, request.ClientID, notify.Payload{
		Type:    models.NewOfferNotification,
		Title:   "New offer received",
		Message: fmt.Sprintf("You received a new offer for %q", request.Title),
		Data: map[string]any{
			"offerId":   offer.ID,
			"requestId": request.ID,
			"vendorId":  vendorId,
		},
	})
	return offer, nil
}

// DeleteOffer удаляет предложение. Удалить можно только свое нерассмотренное предложение.
func (s *OfferService) DeleteOffer(ctx context.Context, requesterId, offerId string) error {
	offer, err := s.Offers.GetOffer(ctx, offerId)
	if err != nil {
		return err
	}
	if offer.VendorID != requesterId {
		return fmt.Errorf("%w: offer belongs to another vendor", models.ErrForbidden)
	}
	if offer.ClientApprovalStatus != models.ApprovalPending {
		return fmt.Errorf("%w: offer was already decided", models.ErrForbidden)
	}

	deleted, err := s.Offers.DeletePendingOffer(ctx, offerId, requesterId)
	if err != nil {
		return err
	}
	if !deleted {
		// решение приняли или предложение удалили между чтением и удалением
		if _, err = s.Offers.GetOffer(ctx, offerId); errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: offer was already decided", models.ErrForbidden)
	}
	return nil
}

// GetOffer возвращает предложение его поставщику, владельцу заявки или администратору.
func (s *OfferService) GetOffer(ctx context.Context, actor models.Actor, offerId string) (*models.Offer, error) {
	offer, err := s.Offers.GetOffer(ctx, offerId)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.AdminRole || offer.VendorID == actor.ID {
		return offer, nil
	}
	request, err := s.Requests.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != actor.ID {
		return nil, models.ErrForbidden
	}
	return offer, nil
}

// ListVendorOffers получает список предложений поставщика.
func (s *OfferService) ListVendorOffers(ctx context.Context, vendorId, limitStr, offsetStr string) ([]models.Offer, error) {
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	return s.Offers.ListVendorOffers(ctx, vendorId, page)
}

// ListRequestOffers получает список предложений по заявке для ее владельца или администратора.
func (s *OfferService) ListRequestOffers(ctx context.Context, actor models.Actor, requestId, limitStr, offsetStr string) ([]models.Offer, error) {
	page, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError("", err.Error())
	}
	request, err := s.Requests.GetRequest(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.AdminRole && request.ClientID != actor.ID {
		return nil, models.ErrForbidden
	}
	return s.Offers.ListRequestOffers(ctx, requestId, page)
}

// VendorStats считает сводку по всем предложениям поставщика.
func (s *OfferService) VendorStats(ctx context.Context, vendorId string) (OfferStats, error) {
	offers, err := s.Offers.ListVendorOffers(ctx, vendorId, models.Page{})
	if err != nil {
		return OfferStats{}, err
	}
	return ComputeStats(offers), nil
}
