// workers/match_worker.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/services"
	"trivia-match-runtime/storage"
)

// QuestionSource is the part of the catalog the worker reads.
type QuestionSource interface {
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
}

// MatchWorker drives one match from playing to ended, one round at a time:
// open the next question, wait out the deadline, score, repeat, finalize.
type MatchWorker struct {
	store     storage.MatchStore
	questions QuestionSource
	archiver  services.ResultArchiver
	clock     clockwork.Clock
	logger    *slog.Logger
}

func NewMatchWorker(store storage.MatchStore, questions QuestionSource, archiver services.ResultArchiver, clock clockwork.Clock, logger *slog.Logger) *MatchWorker {
	if archiver == nil {
		archiver = services.NopArchiver{}
	}
	return &MatchWorker{
		store:     store,
		questions: questions,
		archiver:  archiver,
		clock:     clock,
		logger:    logger.With("component", "worker"),
	}
}

// Job binds the worker to a match for the TaskRegistry.
func (w *MatchWorker) Job(matchID string) Job {
	return func(ctx context.Context) error {
		return w.Run(ctx, matchID)
	}
}

// Run plays the match until it ends. ctx is only observed while waiting for
// a round deadline; store writes are never interrupted half way.
func (w *MatchWorker) Run(ctx context.Context, matchID string) error {
	log := w.logger.With("match_id", matchID)
	storeCtx := context.WithoutCancel(ctx)

	for {
		m, err := w.store.GetMatch(storeCtx, matchID)
		if err != nil {
			return fmt.Errorf("load match: %w", err)
		}
		if m.Status != models.MatchPlaying {
			return apperrors.Newf(apperrors.CodeInvalidState, "match %s is %s", matchID, m.Status)
		}

		round := m.ActiveRound()
		if round != nil {
			log.Info("resuming active round", "round", round.RoundCount)
		} else {
			questionID, ok := m.NextQuestionID()
			if !ok {
				return w.finalize(storeCtx, m, log)
			}
			round, err = w.openRound(storeCtx, m, questionID)
			if err != nil {
				return err
			}
			log.Info("round opened",
				"round", round.RoundCount,
				"question_id", questionID,
				"deadline", round.RoundEndtime)
		}

		if err := w.waitUntil(ctx, round.RoundEndtime); err != nil {
			log.Warn("worker cancelled with round open", "round", round.RoundCount)
			return err
		}

		if err := w.closeRound(storeCtx, matchID, round.ID, log); err != nil {
			return err
		}
	}
}

func (w *MatchWorker) openRound(ctx context.Context, m *models.Match, questionID string) (*models.Round, error) {
	q, err := w.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", questionID, err)
	}
	if len(q.Distractors) != models.DistractorCount {
		return nil, apperrors.Newf(apperrors.CodeInternal,
			"question %s has %d distractors", q.ID, len(q.Distractors))
	}

	options := append(append([]string{}, q.Distractors...), q.Answer)
	answerAt := len(options) - 1
	perm := rand.Perm(len(options))
	possible := make(models.StringList, len(options))
	correct := 0
	for i, from := range perm {
		possible[i] = options[from]
		if from == answerAt {
			correct = i
		}
	}

	round := &models.Round{
		QuestionID:         q.ID,
		RoundCount:         len(m.Rounds) + 1,
		Question:           q.Question,
		Difficulty:         q.Difficulty,
		PossibleAnswers:    possible,
		CorrectAnswerIndex: correct,
		RoundEndtime:       w.clock.Now().Add(time.Duration(m.RoundTimeSec) * time.Second),
	}
	if err := w.store.AppendRound(ctx, m.ID, round); err != nil {
		return nil, fmt.Errorf("append round %d: %w", round.RoundCount, err)
	}
	return round, nil
}

// waitUntil is the worker's suspension point.
func (w *MatchWorker) waitUntil(ctx context.Context, deadline time.Time) error {
	d := deadline.Sub(w.clock.Now())
	if d <= 0 {
		return ctx.Err()
	}
	timer := w.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

func (w *MatchWorker) closeRound(ctx context.Context, matchID, roundID string, log *slog.Logger) error {
	m, err := w.store.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("reload match: %w", err)
	}
	var round *models.Round
	for i := range m.Rounds {
		if m.Rounds[i].ID == roundID {
			round = &m.Rounds[i]
			break
		}
	}
	if round == nil {
		return apperrors.Newf(apperrors.CodeNotFound, "round %s disappeared from match %s", roundID, matchID)
	}
	if round.Closed() {
		return nil
	}

	scores, correctAnswer, err := services.ScoreRound(round, m.InvitedIDs)
	if err != nil {
		return err
	}
	err = w.store.SetRoundScore(ctx, matchID, roundID, scores, correctAnswer, w.clock.Now())
	if errors.Is(err, apperrors.ErrConflict) {
		log.Warn("round was already scored", "round", round.RoundCount)
		return nil
	}
	if err != nil {
		return fmt.Errorf("score round %d: %w", round.RoundCount, err)
	}

	log.Info("round closed", "round", round.RoundCount, "responses", len(round.Responses))
	return nil
}

func (w *MatchWorker) finalize(ctx context.Context, m *models.Match, log *slog.Logger) error {
	final := services.FinalScores(m.Rounds, m.InvitedIDs)
	if err := w.store.Finalize(ctx, m.ID, final, w.clock.Now()); err != nil {
		return fmt.Errorf("finalize match: %w", err)
	}
	log.Info("match ended", "rounds", len(m.Rounds), "final_score", final)

	ended, err := w.store.GetMatch(ctx, m.ID)
	if err != nil {
		log.Error("reload ended match for archive", "err", err)
		return nil
	}
	if err := w.archiver.Archive(ctx, ended); err != nil {
		log.Error("archive match results", "err", err)
	}
	return nil
}
