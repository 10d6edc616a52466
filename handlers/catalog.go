package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/services"
)

func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(err)
	}
	u, err := h.Catalog.CreateUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Catalog.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handlers) GetUser(c *fiber.Ctx) error {
	u, err := h.Catalog.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) CreateQuestion(c *fiber.Ctx) error {
	var in services.QuestionInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(err)
	}
	q, err := h.Catalog.CreateQuestion(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

func (h *Handlers) ListQuestions(c *fiber.Ctx) error {
	qs, err := h.Catalog.ListQuestions(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(qs)
}

func (h *Handlers) GetQuestion(c *fiber.Ctx) error {
	q, err := h.Catalog.GetQuestion(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(q)
}

func (h *Handlers) UpdateQuestion(c *fiber.Ctx) error {
	var in services.QuestionInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(err)
	}
	q, err := h.Catalog.UpdateQuestion(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(q)
}

func (h *Handlers) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.Catalog.DeleteQuestion(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
