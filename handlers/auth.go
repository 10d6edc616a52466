package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/middleware"
	"trivia-match-runtime/models"
)

type loginRequest struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *Handlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}

	token, expires, user, err := h.Identity.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expires.UTC().Format(time.RFC3339),
		"user":         user,
	})
}

func (h *Handlers) Me(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	u, err := h.Catalog.GetUser(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// MyMatches lists the caller's matches. ?status=waiting_start gives pending
// invitations, playing the live match, ended the played ones.
func (h *Handlers) MyMatches(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	matches, err := h.Matches.ForUser(c.UserContext(), p.UserID, models.MatchStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(matches)
}
