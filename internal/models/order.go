package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus - статус заказа.
type OrderStatus string

const (
	PendingOrder    OrderStatus = "pending"
	InProgressOrder OrderStatus = "in_progress"
	CompletedOrder  OrderStatus = "completed"
	CancelledOrder  OrderStatus = "cancelled"
)

// Order представляет заказ, созданный после одобрения предложения.
type Order struct {
	ID           string          `json:"id"`
	OfferID      string          `json:"offerId"`
	RequestID    string          `json:"requestId"`
	ClientID     string          `json:"clientId"`
	VendorID     string          `json:"vendorId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Status       OrderStatus     `json:"status"`
	DeliveryDate time.Time       `json:"deliveryDate"`
	CreatedAt    time.Time       `json:"createdAt"`
}
