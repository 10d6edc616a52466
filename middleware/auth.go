// middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/services"
)

const principalKey = "principal"

// TokenResolver turns a bearer token into the calling user.
type TokenResolver interface {
	Resolve(token string) (services.Principal, error)
}

// BearerAuth validates the Authorization header and stores the caller in
// the request locals.
func BearerAuth(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperrors.New(apperrors.CodeUnauthenticated, "authorization header missing")
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return apperrors.New(apperrors.CodeUnauthenticated, "authorization header must use the Bearer scheme")
		}

		p, err := resolver.Resolve(token)
		if err != nil {
			return err
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Use after BearerAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return apperrors.New(apperrors.CodeUnauthenticated, "authentication required")
		}
		if !p.IsAdmin() {
			return apperrors.New(apperrors.CodeForbidden, "admin role required")
		}
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by BearerAuth.
func PrincipalFrom(c *fiber.Ctx) (services.Principal, bool) {
	p, ok := c.Locals(principalKey).(services.Principal)
	return p, ok
}
