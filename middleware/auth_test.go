package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/services"
)

type staticResolver map[string]services.Principal

func (r staticResolver) Resolve(token string) (services.Principal, error) {
	p, ok := r[token]
	if !ok {
		return services.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "invalid token")
	}
	return p, nil
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.CodeOf(err).HTTPStatus()).SendString(string(apperrors.CodeOf(err)))
		},
	})
	resolver := staticResolver{
		"player-token": {UserID: "u1", Role: models.RolePlayer},
		"admin-token":  {UserID: "u2", Role: models.RoleAdmin},
	}
	app.Use(BearerAuth(resolver))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return errors.New("no principal")
		}
		return c.SendString(p.UserID)
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestBearerAuth(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/whoami", "", http.StatusUnauthorized},
		{"wrong scheme", "/whoami", "Basic dTE6cA==", http.StatusUnauthorized},
		{"unknown token", "/whoami", "Bearer nope", http.StatusUnauthorized},
		{"player", "/whoami", "Bearer player-token", http.StatusOK},
		{"player on admin route", "/admin", "Bearer player-token", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	if got := errorStatus(fiber.ErrMethodNotAllowed); got != http.StatusMethodNotAllowed {
		t.Fatalf("errorStatus(fiber) = %d, want 405", got)
	}
	if got := errorStatus(apperrors.New(apperrors.CodeExpired, "late")); got != http.StatusGone {
		t.Fatalf("errorStatus(expired) = %d, want 410", got)
	}
	if got := errorStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("errorStatus(plain) = %d, want 500", got)
	}
}
