package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// handleError логирует ошибку и отправляет ответ с соответствующим кодом.
func handleError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	logger.Println(err)
	utils.SendError(w, utils.ErrorResponseFor(err, fallback))
}

func respond(w http.ResponseWriter, logger *log.Logger, statusCode int, body any) {
	if err := utils.SendJSON(w, statusCode, body); err != nil {
		logger.Println(err)
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewValidationError("", "invalid request body")
	}
	return nil
}

// mustActor возвращает пользователя из контекста. Маршруты без AuthMiddleware его не вызывают.
func mustActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
	}
	return actor, ok
}
