// workers/match_scheduler.go
package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

const (
	SchedulerTaskKey         = "scheduler:matches"
	DefaultSchedulerInterval = 3 * time.Second
)

// MatchStarter starts the worker of one match.
type MatchStarter interface {
	StartMatch(ctx context.Context, matchID string) error
}

// MatchScheduler promotes waiting matches to playing once every invitee has
// joined.
type MatchScheduler struct {
	store    storage.MatchStore
	starter  MatchStarter
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
}

func NewMatchScheduler(store storage.MatchStore, starter MatchStarter, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *MatchScheduler {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	return &MatchScheduler{
		store:    store,
		starter:  starter,
		interval: interval,
		clock:    clock,
		logger:   logger.With("component", "scheduler"),
	}
}

// Recover resets matches left playing by a previous process: no worker can
// still be alive for them, so they go back to waiting_start with no joined
// users and no rounds. Must run before the scheduler starts.
func (s *MatchScheduler) Recover(ctx context.Context) (int, error) {
	playing, err := s.store.ListMatches(ctx, storage.MatchFilter{Status: models.MatchPlaying})
	if err != nil {
		return 0, err
	}

	reset := 0
	for _, m := range playing {
		if err := s.store.ResetToWaiting(ctx, m.ID); err != nil {
			s.logger.Error("failed to reset interrupted match", "match_id", m.ID, "err", err)
			continue
		}
		reset++
		s.logger.Warn("reset interrupted match", "match_id", m.ID)
	}
	return reset, nil
}

// Tick runs one poll.
func (s *MatchScheduler) Tick(ctx context.Context) error {
	waiting, err := s.store.ListMatches(ctx, storage.MatchFilter{Status: models.MatchWaitingStart})
	if err != nil {
		return err
	}

	for _, m := range waiting {
		if !m.AllJoined() {
			continue
		}
		err := s.starter.StartMatch(ctx, m.ID)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidState):
			s.logger.Debug("match already starting", "match_id", m.ID, "err", err)
		default:
			s.logger.Error("failed to start match", "match_id", m.ID, "err", err)
		}
	}
	return nil
}

// Run polls every interval until ctx is cancelled. Poll failures are logged
// and retried on the next interval.
func (s *MatchScheduler) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if err := s.Tick(ctx); err != nil {
				s.logger.Error("poll failed", "err", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	sched.Start()
	s.logger.Info("scheduler running", "interval", s.interval)

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		s.logger.Error("scheduler shutdown", "err", err)
	}
	return nil
}
