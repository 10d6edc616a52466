package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/workers"
)

func (h *Handlers) StartMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Runtime.StartMatch(c.UserContext(), id); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task": workers.MatchTaskKey(id)})
}

func (h *Handlers) StopMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Runtime.StopMatch(id); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task": workers.MatchTaskKey(id)})
}

func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	return c.JSON(h.Runtime.Tasks())
}

// TaskStatus expects the key path-escaped, e.g. match%3A<id>.
func (h *Handlers) TaskStatus(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return badRequest(err)
	}
	handle, err := h.Runtime.TaskStatus(key)
	if err != nil {
		return err
	}
	return c.JSON(handle)
}
