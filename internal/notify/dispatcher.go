// Package notify доставляет уведомления пользователям площадки.
package notify

import (
	"context"
	"errors"
	"log"
	"time"
)

// Payload - содержимое уведомления.
type Payload struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Dispatcher доставляет уведомление пользователю.
type Dispatcher interface {
	Notify(ctx context.Context, userID string, p Payload) error
}

// Fanout отправляет уведомление во все диспетчеры и объединяет ошибки.
type Fanout []Dispatcher

func (f Fanout) Notify(ctx context.Context, userID string, p Payload) error {
	var errs []error
	for _, d := range f {
		if err := d.Notify(ctx, userID, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BestEffort отправляет уведомления без влияния на результат основной операции:
// отмена контекста вызывающего не прерывает отправку, ошибки только логируются.
type BestEffort struct {
	next    Dispatcher
	logger  *log.Logger
	timeout time.Duration
}

// NewBestEffort оборачивает диспетчер. next может быть nil, тогда уведомления не отправляются.
func NewBestEffort(next Dispatcher, logger *log.Logger, timeout time.Duration) *BestEffort {
	return &BestEffort{next: next, logger: logger, timeout: timeout}
}

// Send отправляет уведомление и никогда не возвращает ошибку.
func (b *BestEffort) Send(ctx context.Context, userID string, p Payload) {
	if b == nil || b.next == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	if err := b.next.Notify(ctx, userID, p); err != nil {
		b.logger.Printf("notification %s to %s failed: %v", p.Type, userID, err)
	}
}
