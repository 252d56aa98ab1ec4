package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	RequestUrgency      string // Срочность заявки
	RequestStatus       string // Статус заявки
	AdminApprovalStatus string // Решение администратора по заявке
)

const (
	UrgencyLow    RequestUrgency = "low"
	UrgencyMedium RequestUrgency = "medium"
	UrgencyHigh   RequestUrgency = "high"
	UrgencyUrgent RequestUrgency = "urgent"

	OpenRequest      RequestStatus = "open"      // Заявка открыта для предложений
	CompletedRequest RequestStatus = "completed" // Заявка выполнена
	CancelledRequest RequestStatus = "cancelled" // Заявка отменена клиентом

	AdminPending  AdminApprovalStatus = "pending"  // Ожидает модерации
	AdminApproved AdminApprovalStatus = "approved" // Одобрена администратором
	AdminRejected AdminApprovalStatus = "rejected" // Отклонена администратором
)

// Request представляет заявку клиента на закупку.
type Request struct {
	ID                  string              `json:"id"`
	ClientID            string              `json:"clientId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Category            string              `json:"category"`
	Location            *string             `json:"location,omitempty"`
	Urgency             RequestUrgency      `json:"urgency"`
	BudgetMin           *decimal.Decimal    `json:"budgetMin,omitempty"`
	BudgetMax           *decimal.Decimal    `json:"budgetMax,omitempty"`
	Currency            string              `json:"currency"`
	Deadline            *time.Time          `json:"deadline,omitempty"`
	Status              RequestStatus       `json:"status"`
	AdminApprovalStatus AdminApprovalStatus `json:"adminApprovalStatus"`
	AdminNotes          *string             `json:"adminNotes,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
}

// Biddable сообщает, можно ли подавать предложения по заявке.
func (r *Request) Biddable() bool {
	return r.AdminApprovalStatus == AdminApproved && r.Status != CompletedRequest
}

// RequestRequest представляет тело запроса на создание заявки.
type RequestRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"required,max=4000"`
	Category    string           `json:"category" validate:"required,max=100"`
	Location    *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	Urgency     RequestUrgency   `json:"urgency" validate:"omitempty,oneof=low medium high urgent"`
	BudgetMin   *decimal.Decimal `json:"budgetMin,omitempty"`
	BudgetMax   *decimal.Decimal `json:"budgetMax,omitempty"`
	Currency    string           `json:"currency" validate:"omitempty,len=3"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
}

// ReviewRequest представляет решение администратора по заявке.
type ReviewRequest struct {
	Decision AdminApprovalStatus `json:"decision"`
	Notes    string              `json:"notes"`
}
