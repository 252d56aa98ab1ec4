package models

import "time"

const (
	NewOfferNotification        = "new_offer"
	OfferApprovedNotification   = "offer_approved"
	OfferRejectedNotification   = "offer_rejected"
	RequestApprovedNotification = "request_approved"
	RequestRejectedNotification = "request_rejected"
)

// Notification представляет уведомление пользователя.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}
