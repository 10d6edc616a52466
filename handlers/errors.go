package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/apperrors"
)

// ErrorHandler renders errors returned by handlers and middleware as
// {"error": message, "code": code}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	logger = logger.With("component", "http")
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		code := apperrors.CodeOf(err)
		if code == apperrors.CodeInternal {
			logger.Error("internal error", "method", c.Method(), "path", c.Path(), "err", err)
		}
		return c.Status(code.HTTPStatus()).JSON(fiber.Map{
			"error": apperrors.PublicMessage(err),
			"code":  code,
		})
	}
}

func badRequest(err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid request body", err)
}
