package handlers

import (
	"errors"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorResponse represents an error response. Detail identifies the offending
// field for validation failures.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ErrorHandler is the custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error: message,
	})
}

// serviceError maps the service error taxonomy to HTTP responses:
// schema-level validation 422, semantic validation and bad cursors 400,
// missing records 404, store failures 503 (retryable by the caller).
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		status := fiber.StatusBadRequest
		if validationErr.Schema {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(ErrorResponse{
			Error:  validationErr.Message,
			Detail: validationErr.Field,
		})
	}

	if errors.Is(err, services.ErrInvalidCursor) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:  err.Error(),
			Detail: "page_token",
		})
	}

	var storeErr *services.StoreError
	if errors.As(err, &storeErr) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "datastore temporarily unavailable",
		})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error: "not found",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: err.Error(),
	})
}
