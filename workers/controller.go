package workers

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

// MatchTaskKey is the registry key of a match worker.
func MatchTaskKey(matchID string) string {
	return "match:" + matchID
}

// Controller starts and stops match workers through the TaskRegistry.
type Controller struct {
	store    storage.MatchStore
	registry *TaskRegistry
	worker   *MatchWorker
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewController(store storage.MatchStore, registry *TaskRegistry, worker *MatchWorker, clock clockwork.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		store:    store,
		registry: registry,
		worker:   worker,
		clock:    clock,
		logger:   logger.With("component", "controller"),
	}
}

// StartMatch moves a waiting match to playing and spawns its worker. A match
// that is already playing gets a worker again, resuming any open round.
func (c *Controller) StartMatch(ctx context.Context, matchID string) error {
	m, err := c.store.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}

	switch m.Status {
	case models.MatchEnded:
		return apperrors.New(apperrors.CodeInvalidState, "match already ended")
	case models.MatchWaitingStart:
		if err := c.store.TransitionStatus(ctx, matchID, models.MatchWaitingStart, models.MatchPlaying, c.clock.Now()); err != nil {
			return err
		}
	}

	if err := c.registry.Start(MatchTaskKey(matchID), c.worker.Job(matchID)); err != nil {
		return err
	}
	c.logger.Info("match started", "match_id", matchID, "players", len(m.InvitedIDs))
	return nil
}

// StopMatch cancels the worker of a match. The match keeps its current state.
func (c *Controller) StopMatch(matchID string) error {
	return c.registry.Stop(MatchTaskKey(matchID))
}

func (c *Controller) TaskStatus(key string) (TaskHandle, error) {
	return c.registry.Status(key)
}

func (c *Controller) Tasks() []TaskHandle {
	return c.registry.List()
}
