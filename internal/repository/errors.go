// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"reelhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation       = "23505"
	pgInsufficientPrivilege = "42501"
)

// translate maps driver errors onto AppError codes. Unknown errors pass through unchanged.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	// SQLite reports uniqueness as text when error translation is off.
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return models.NewConflictError(resource+" already exists", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.NewConflictError(resource+" already exists", err)
		case pgInsufficientPrivilege:
			return &models.AppError{Code: models.CodeUnauthorized, Message: "permission denied", Err: err}
		}
	}
	return err
}
