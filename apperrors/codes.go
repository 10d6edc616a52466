package apperrors

import "github.com/gofiber/fiber/v2"

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeExpired         Code = "EXPIRED"
	CodeConflict        Code = "CONFLICT"
	CodeOutOfRange      Code = "OUT_OF_RANGE"
	CodeInternal        Code = "INTERNAL"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
)

// HTTPStatus maps the code to the status used by the HTTP handlers.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeInvalidState, CodeConflict:
		return fiber.StatusConflict
	case CodeExpired:
		return fiber.StatusGone
	case CodeOutOfRange:
		return fiber.StatusUnprocessableEntity
	case CodeInvalidArgument:
		return fiber.StatusBadRequest
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
