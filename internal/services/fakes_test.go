package services

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/notify"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/shopspring/decimal"
)

var discardLogger = log.New(io.Discard, "", 0)

// memStore - хранилище в памяти с теми же условными записями, что и Postgres-репозитории.
type memStore struct {
	mu       sync.Mutex
	requests map[string]models.Request
	offers   map[string]models.Offer
	orders   map[string]models.Order // offer_id -> order

	failCreateOrder  int // сколько следующих CreateOrder завершатся ошибкой
	createOrderCalls int
	offerWrites      int
}

func newMemStore() *memStore {
	return &memStore{
		requests: make(map[string]models.Request),
		offers:   make(map[string]models.Offer),
		orders:   make(map[string]models.Order),
	}
}

func paginate[T any](items []T, page models.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// requests

func (m *memStore) CreateRequest(ctx context.Context, request *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[request.ID] = *request
	return nil
}

func (m *memStore) GetRequest(ctx context.Context, requestId string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListRequests(ctx context.Context, filter repository.RequestFilter, page models.Page) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Request
	for _, r := range m.requests {
		if filter.ClientID != "" && r.ClientID != filter.ClientID {
			continue
		}
		if len(filter.AdminStatuses) > 0 && !containsValue(filter.AdminStatuses, r.AdminApprovalStatus) {
			continue
		}
		if containsValue(filter.ExcludeStatuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), nil
}

func (m *memStore) ReviewRequest(ctx context.Context, requestId string, decision models.AdminApprovalStatus, notes *string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestId]
	if !ok || r.AdminApprovalStatus != models.AdminPending {
		return nil, models.ErrAlreadyReviewed
	}
	r.AdminApprovalStatus = decision
	r.AdminNotes = notes
	m.requests[requestId] = r
	return &r, nil
}

func (m *memStore) UpdateRequestStatus(ctx context.Context, requestId string, from, to models.RequestStatus) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestId]
	if !ok || r.Status != from {
		return nil, models.ErrForbidden
	}
	r.Status = to
	m.requests[requestId] = r
	return &r, nil
}

// offers

func (m *memStore) CreateOffer(ctx context.Context, offer *models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.VendorID == offer.VendorID && o.RequestID == offer.RequestID {
			return models.ErrDuplicateOffer
		}
	}
	m.offers[offer.ID] = *offer
	m.offerWrites++
	return nil
}

func (m *memStore) GetOffer(ctx context.Context, offerId string) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) FindVendorOffer(ctx context.Context, vendorId, requestId string) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.offers {
		if o.VendorID == vendorId && o.RequestID == requestId {
			return &o, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) listOffers(match func(models.Offer) bool, page models.Page) []models.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Offer
	for _, o := range m.offers {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page)
}

func (m *memStore) ListVendorOffers(ctx context.Context, vendorId string, page models.Page) ([]models.Offer, error) {
	return m.listOffers(func(o models.Offer) bool { return o.VendorID == vendorId }, page), nil
}

func (m *memStore) ListRequestOffers(ctx context.Context, requestId string, page models.Page) ([]models.Offer, error) {
	return m.listOffers(func(o models.Offer) bool { return o.RequestID == requestId }, page), nil
}

func (m *memStore) DecideOffer(ctx context.Context, offerId string, decision models.ApprovalStatus, notes *string, decidedAt time.Time) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerId]
	if !ok || o.ClientApprovalStatus != models.ApprovalPending {
		return nil, models.ErrAlreadyDecided
	}
	o.ClientApprovalStatus = decision
	o.ClientApprovalNotes = notes
	o.ClientApprovalDate = &decidedAt
	o.Status = models.RejectedOffer
	if decision == models.ApprovalApproved {
		o.Status = models.AcceptedOffer
		o.OrderPending = true
	}
	m.offers[offerId] = o
	m.offerWrites++
	return &o, nil
}

func (m *memStore) DeletePendingOffer(ctx context.Context, offerId, vendorId string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerId]
	if !ok || o.VendorID != vendorId || o.ClientApprovalStatus != models.ApprovalPending {
		return false, nil
	}
	delete(m.offers, offerId)
	return true, nil
}

func (m *memStore) ClearOrderPending(ctx context.Context, offerId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[offerId]
	if !ok {
		return models.ErrNotFound
	}
	o.OrderPending = false
	m.offers[offerId] = o
	return nil
}

func (m *memStore) ListOrderPending(ctx context.Context) ([]models.Offer, error) {
	return m.listOffers(func(o models.Offer) bool {
		return o.OrderPending && o.ClientApprovalStatus == models.ApprovalApproved
	}, models.Page{}), nil
}

// orders

var errOrderWrite = errors.New("orders: write failed")

func (m *memStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createOrderCalls++
	if m.failCreateOrder > 0 {
		m.failCreateOrder--
		return nil, false, errOrderWrite
	}
	if existing, ok := m.orders[order.OfferID]; ok {
		return &existing, false, nil
	}
	m.orders[order.OfferID] = *order
	return order, true, nil
}

func (m *memStore) GetOrder(ctx context.Context, orderId string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == orderId {
			return &o, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) GetOrderByOffer(ctx context.Context, offerId string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[offerId]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (m *memStore) ListOrders(ctx context.Context, filter repository.OrderFilter, page models.Page) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		if filter.VendorID != "" && o.VendorID != filter.VendorID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, page), nil
}

func (m *memStore) ordersForOffer(offerId string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.orders {
		if o.OfferID == offerId {
			n++
		}
	}
	return n
}

func containsValue[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// fakeDispatcher запоминает уведомления и может завершаться ошибкой.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

type sentNotification struct {
	UserID  string
	Payload notify.Payload
}

func (d *fakeDispatcher) Notify(ctx context.Context, userID string, p notify.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, sentNotification{UserID: userID, Payload: p})
	return d.err
}

func (d *fakeDispatcher) types() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.sent))
	for i, s := range d.sent {
		out[i] = s.UserID + ":" + s.Payload.Type
	}
	return out
}

type fakeReconciler struct {
	mu       sync.Mutex
	enqueued []string
}

func (r *fakeReconciler) Enqueue(ctx context.Context, offerId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enqueued = append(r.enqueued, offerId)
	return nil
}

var baseTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fixture собирает сервисы поверх одного memStore.
type fixture struct {
	store      *memStore
	dispatcher *fakeDispatcher
	offers     *OfferService
	lifecycle  *LifecycleService
	requests   *RequestService
}

func newFixture() *fixture {
	store := newMemStore()
	dispatcher := &fakeDispatcher{}
	notifier := notify.NewBestEffort(dispatcher, discardLogger, time.Second)

	offers := NewOfferService(store, store, notifier)
	offers.now = fixedClock(baseTime)
	lifecycle := NewLifecycleService(store, store, store, notifier, discardLogger, time.Second)
	lifecycle.now = fixedClock(baseTime.Add(time.Hour))
	requests := NewRequestService(store, store, notifier)
	requests.now = fixedClock(baseTime)

	return &fixture{store: store, dispatcher: dispatcher, offers: offers, lifecycle: lifecycle, requests: requests}
}

func (f *fixture) addRequest(id, clientId string, admin models.AdminApprovalStatus, status models.RequestStatus, createdAt time.Time) models.Request {
	r := models.Request{
		ID:                  id,
		ClientID:            clientId,
		Title:               "Request " + id,
		Description:         "Need supplies",
		Category:            "office",
		Urgency:             models.UrgencyMedium,
		Currency:            "USD",
		Status:              status,
		AdminApprovalStatus: admin,
		CreatedAt:           createdAt,
	}
	f.store.requests[id] = r
	return r
}

func validOffer(requestId string) models.OfferRequest {
	return models.OfferRequest{
		RequestID:        requestId,
		Title:            "Office chairs",
		Description:      "20 ergonomic chairs",
		Price:            decimal.NewFromInt(1000),
		DeliveryTimeDays: 5,
	}
}
