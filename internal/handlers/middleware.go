package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ActorParser извлекает пользователя из токена доступа.
type ActorParser interface {
	ParseActor(token string) (models.Actor, error)
}

// AuthMiddleware требует заголовок Authorization: Bearer <token>.
func AuthMiddleware(tokens ActorParser, logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			actor, err := tokens.ParseActor(strings.TrimSpace(token))
			if err != nil {
				logger.Printf("token rejected: %v", err)
				utils.SendErrorResponse(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole пропускает только пользователей с одной из ролей.
// Используется после AuthMiddleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !utils.Contains(roles, actor.Role) {
				utils.SendErrorResponse(w, http.StatusForbidden, "insufficient permissions for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor кладет пользователя в контекст.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext достает пользователя, положенного AuthMiddleware.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	return actor, ok
}
