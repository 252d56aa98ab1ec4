package repository

import (
	"errors"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// pageArgs возвращает значения для LIMIT и OFFSET. LIMIT NULL в Postgres означает без ограничения.
func pageArgs(page models.Page) (any, int) {
	var limit any
	if page.Limit > 0 {
		limit = page.Limit
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// isUniqueViolation проверяет, нарушено ли ограничение уникальности с указанным именем.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// isNotFound сообщает, что запись не найдена. Значение, которое Postgres не может привести
// к типу колонки (например, не-UUID в id), тоже не может совпасть ни с одной записью.
func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
