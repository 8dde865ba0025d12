package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pedrofarias/storefinder/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "unprocessable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// domainError maps core sentinel errors to HTTP responses. Unknown errors
// become opaque 500s so internals never leak to clients.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrLocationConflict),
		errors.Is(err, domain.ErrStoreHasPDVs):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrInvalidParentStore):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrAddressResolution),
		errors.Is(err, domain.ErrGeocoding):
		return errUnprocessable(c, err.Error())
	default:
		return errInternal(c, "internal error")
	}
}
