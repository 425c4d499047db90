package server

import (
	"errors"

	"reelhub/internal/middleware"
	"reelhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// statusForError maps an AppError code to an HTTP status.
func statusForError(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeAuth:
		return fiber.StatusUnauthorized
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeConfig:
		return fiber.StatusServiceUnavailable
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", "error", err.Error())
		if models.ErrorCode(err) == "" {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// requireOwner rejects the request unless the viewer is ownerID.
func requireOwner(c *fiber.Ctx, ownerID string) error {
	if middleware.ViewerID(c) != ownerID {
		return models.NewUnauthorizedError("not allowed to modify this resource")
	}
	return nil
}
