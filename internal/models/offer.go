package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	OfferStatus    string // Статус предложения со стороны поставщика
	ApprovalStatus string // Решение клиента по предложению
)

const (
	PendingOffer  OfferStatus = "pending"  // Предложение на рассмотрении
	AcceptedOffer OfferStatus = "accepted" // Предложение принято
	RejectedOffer OfferStatus = "rejected" // Предложение отклонено

	ApprovalPending  ApprovalStatus = "pending"  // Клиент еще не принял решение
	ApprovalApproved ApprovalStatus = "approved" // Клиент одобрил предложение
	ApprovalRejected ApprovalStatus = "rejected" // Клиент отклонил предложение
)

// Terminal сообщает, является ли решение окончательным.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// Offer представляет предложение поставщика по заявке.
type Offer struct {
	ID                   string          `json:"id"`
	RequestID            string          `json:"requestId"`
	VendorID             string          `json:"vendorId"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	Currency             string          `json:"currency"`
	DeliveryTimeDays     int             `json:"deliveryTimeDays"`
	Status               OfferStatus     `json:"status"`
	ClientApprovalStatus ApprovalStatus  `json:"clientApprovalStatus"`
	ClientApprovalNotes  *string         `json:"clientApprovalNotes,omitempty"`
	ClientApprovalDate   *time.Time      `json:"clientApprovalDate,omitempty"`
	OrderPending         bool            `json:"orderPending"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// OfferRequest представляет тело запроса на создание предложения.
type OfferRequest struct {
	RequestID        string          `json:"requestId" validate:"required"`
	Title            string          `json:"title" validate:"required,max=200"`
	Description      string          `json:"description" validate:"required,max=4000"`
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency" validate:"omitempty,len=3"`
	DeliveryTimeDays int             `json:"deliveryTimeDays" validate:"gt=0"`
}

// DecisionRequest представляет решение клиента по предложению.
type DecisionRequest struct {
	Decision ApprovalStatus `json:"decision"`
	Notes    string         `json:"notes"`
}

// OfferDecision - результат перехода предложения в окончательный статус.
type OfferDecision struct {
	Offer *Offer `json:"offer"`
	Order *Order `json:"order,omitempty"`
}
