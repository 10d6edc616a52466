package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/apperrors"
)

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	logger = logger.With("component", "http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		}
		if p, ok := PrincipalFrom(c); ok {
			attrs = append(attrs, "user_id", p.UserID)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Warn("request", attrs...)
		case err != nil:
			logger.Info("request", attrs...)
		default:
			logger.Debug("request", attrs...)
		}
		return err
	}
}

// errorStatus is the status the app error handler will render for err.
func errorStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperrors.CodeOf(err).HTTPStatus()
}
