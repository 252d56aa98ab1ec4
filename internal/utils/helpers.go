package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendError(w, models.NewErrorResponse(statusCode, message))
}

// SendError отправляет готовый ErrorResponse в формате JSON
func SendError(w http.ResponseWriter, errorResponse *models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorResponse.StatusCode)
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendJSON отправляет ответ в формате JSON
func SendJSON(w http.ResponseWriter, statusCode int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}

// ErrorResponseFor сопоставляет доменную ошибку с HTTP-кодом и сообщением.
// Неизвестные ошибки превращаются в 500 с сообщением fallback.
func ErrorResponseFor(err error, fallback string) *models.ErrorResponse {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return models.NewErrorResponse(http.StatusBadRequest, validationErr.Error())
	}

	var dependentErr *models.DependentWriteError
	if errors.As(err, &dependentErr) {
		resp := models.NewErrorResponse(http.StatusFailedDependency, "approval recorded, order creation failed; retry order creation")
		resp.OfferID = dependentErr.OfferID
		return resp
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.NewErrorResponse(http.StatusNotFound, "resource not found")
	case errors.Is(err, models.ErrForbidden):
		return models.NewErrorResponse(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrIneligibleRequest):
		return models.NewErrorResponse(http.StatusConflict, "request is not open for offers")
	case errors.Is(err, models.ErrDuplicateOffer):
		return models.NewErrorResponse(http.StatusConflict, "you already have an offer on this request")
	case errors.Is(err, models.ErrAlreadyDecided):
		return models.NewErrorResponse(http.StatusConflict, "this offer was already decided, refresh and try again")
	case errors.Is(err, models.ErrAlreadyReviewed):
		return models.NewErrorResponse(http.StatusConflict, "this request was already reviewed")
	}
	return models.NewErrorResponse(http.StatusInternalServerError, fallback)
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (models.Page, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return models.Page{}, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return models.Page{}, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return models.Page{Limit: limit, Offset: offset}, nil
}

// Contains - функция для проверки допустимости перехода статуса
func Contains[T comparable](validValues []T, value T) bool {
	for _, valid := range validValues {
		if valid == value {
			return true
		}
	}
	return false
}
