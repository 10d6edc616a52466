// handlers/routes.go
package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"trivia-match-runtime/middleware"
	"trivia-match-runtime/services"
	"trivia-match-runtime/workers"
)

// RuntimeControl starts and stops match workers.
type RuntimeControl interface {
	StartMatch(ctx context.Context, matchID string) error
	StopMatch(matchID string) error
	TaskStatus(key string) (workers.TaskHandle, error)
	Tasks() []workers.TaskHandle
}

type Handlers struct {
	Matches  *services.MatchService
	Catalog  *services.CatalogService
	Gateway  *services.AnswerGateway
	Identity *services.Identity
	Runtime  RuntimeControl
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	// 🔓 Public
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/auth/login", h.Login)

	// 🔐 Authenticated
	secured := app.Group("/", middleware.BearerAuth(h.Identity))
	admin := middleware.RequireAdmin()

	secured.Get("/me", h.Me)
	secured.Get("/me/matches", h.MyMatches)

	// Users (admin)
	secured.Post("/users", admin, h.CreateUser)
	secured.Get("/users", admin, h.ListUsers)
	secured.Get("/users/:id", admin, h.GetUser)
	secured.Delete("/users/:id", admin, h.DeleteUser)

	// Questions (admin)
	secured.Post("/questions", admin, h.CreateQuestion)
	secured.Get("/questions", admin, h.ListQuestions)
	secured.Get("/questions/:id", admin, h.GetQuestion)
	secured.Put("/questions/:id", admin, h.UpdateQuestion)
	secured.Delete("/questions/:id", admin, h.DeleteQuestion)

	// Matches
	secured.Post("/matches", admin, h.CreateMatch)
	secured.Get("/matches", admin, h.ListMatches)
	secured.Delete("/matches/:id", admin, h.DeleteMatch)
	secured.Get("/matches/:id", h.MatchDetails)
	secured.Post("/matches/:id/join", h.JoinMatch)
	secured.Post("/matches/:id/leave", h.LeaveMatch)
	secured.Get("/matches/:id/round", h.ActiveRound)
	secured.Post("/matches/:id/questions/:question_id/answer", h.SubmitAnswer)

	// Runtime control (admin)
	secured.Post("/admin/matches/:id/start", admin, h.StartMatch)
	secured.Post("/admin/matches/:id/stop", admin, h.StopMatch)
	secured.Get("/admin/tasks", admin, h.ListTasks)
	secured.Get("/admin/tasks/:key", admin, h.TaskStatus)
}
