package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/middleware"
	"trivia-match-runtime/models"
	"trivia-match-runtime/services"
)

func (h *Handlers) CreateMatch(c *fiber.Ctx) error {
	var in services.MatchInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(err)
	}
	m, err := h.Matches.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handlers) ListMatches(c *fiber.Ctx) error {
	matches, err := h.Matches.List(c.UserContext(), models.MatchStatus(c.Query("status")))
	if err != nil {
		return err
	}
	return c.JSON(matches)
}

func (h *Handlers) DeleteMatch(c *fiber.Ctx) error {
	if err := h.Matches.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) MatchDetails(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	d, err := h.Matches.Details(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (h *Handlers) JoinMatch(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	m, err := h.Matches.Join(c.UserContext(), c.Params("id"), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (h *Handlers) LeaveMatch(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	m, err := h.Matches.Leave(c.UserContext(), c.Params("id"), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (h *Handlers) ActiveRound(c *fiber.Ctx) error {
	p, _ := middleware.PrincipalFrom(c)
	view, err := h.Gateway.ActiveRound(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

type answerRequest struct {
	AnswerIndex int `json:"answer_index" form:"answer_position"`
}

func (h *Handlers) SubmitAnswer(c *fiber.Ctx) error {
	var req answerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	p, _ := middleware.PrincipalFrom(c)
	accepted, err := h.Gateway.Submit(c.UserContext(), c.Params("id"), c.Params("question_id"), req.AnswerIndex, p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"accepted_index": accepted})
}
