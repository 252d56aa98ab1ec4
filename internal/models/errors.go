package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrForbidden         = errors.New("user does not have permission to perform this action")
	ErrIneligibleRequest = errors.New("request is not open for offers")
	ErrDuplicateOffer    = errors.New("vendor already has an offer on this request")
	ErrAlreadyDecided    = errors.New("offer was already decided")
	ErrAlreadyReviewed   = errors.New("request was already reviewed")
	ErrDependentWrite    = errors.New("approval recorded, order creation failed")
)

// ValidationError описывает некорректное поле входных данных.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError создает ошибку валидации для поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DependentWriteError возвращается, когда решение по предложению записано,
// а создание заказа завершилось ошибкой. Повтор выполняется по OfferID.
type DependentWriteError struct {
	OfferID string
	Err     error
}

func (e *DependentWriteError) Error() string {
	return fmt.Sprintf("offer %s: %v: %v", e.OfferID, ErrDependentWrite, e.Err)
}

func (e *DependentWriteError) Unwrap() []error {
	return []error{ErrDependentWrite, e.Err}
}
