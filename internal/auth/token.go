// Package auth проверяет токены доступа, выданные платформой.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims - утверждения токена: sub содержит id пользователя, role - его роль.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService подписывает и проверяет HS256-токены.
type TokenService struct {
	signingKey []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{signingKey: []byte(secret)}
}

// GenerateToken выпускает токен для пользователя.
func (s *TokenService) GenerateToken(actor models.Actor, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// ParseActor проверяет токен и возвращает пользователя из его утверждений.
func (s *TokenService) ParseActor(tokenString string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return models.Actor{}, ErrInvalidToken
	}

	switch claims.Role {
	case models.ClientRole, models.VendorRole, models.AdminRole:
	default:
		return models.Actor{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return models.Actor{ID: claims.Subject, Role: claims.Role}, nil
}
