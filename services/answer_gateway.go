// services/answer_gateway.go
package services

import (
	"context"
	"log/slog"
	"math"

	"github.com/jonboulle/clockwork"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

// AnswerGateway records participant answers and serves the active round.
// It runs concurrently with the MatchWorker closing the same rounds; the
// store refuses appends to a round that already carries a score.
type AnswerGateway struct {
	store  storage.MatchStore
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewAnswerGateway(store storage.MatchStore, clock clockwork.Clock, logger *slog.Logger) *AnswerGateway {
	return &AnswerGateway{
		store:  store,
		clock:  clock,
		logger: logger.With("component", "gateway"),
	}
}

// Submit validates and records one answer. answerIndex is 1-based.
func (g *AnswerGateway) Submit(ctx context.Context, matchID, questionID string, answerIndex int, userID string) (int, error) {
	m, err := g.store.GetMatch(ctx, matchID)
	if err != nil {
		return 0, err
	}
	if !m.IsInvited(userID) {
		return 0, apperrors.New(apperrors.CodeForbidden, "user is not a participant of this match")
	}
	if m.Status != models.MatchPlaying {
		return 0, apperrors.Newf(apperrors.CodeInvalidState, "match is %s", m.Status)
	}

	round := m.RoundByQuestion(questionID)
	if round == nil || round.Closed() {
		return 0, apperrors.New(apperrors.CodeNotFound, "round already finalized or unknown")
	}

	now := g.clock.Now()
	if !now.Before(round.RoundEndtime) {
		return 0, apperrors.New(apperrors.CodeExpired, "round deadline has passed")
	}
	if round.ResponseBy(userID) != nil {
		return 0, apperrors.New(apperrors.CodeConflict, "answer already submitted for this round")
	}
	if answerIndex < 1 || answerIndex > len(round.PossibleAnswers) {
		return 0, apperrors.Newf(apperrors.CodeOutOfRange,
			"answer index must be between 1 and %d", len(round.PossibleAnswers))
	}

	resp := &models.Response{
		UserID:      userID,
		AnswerIndex: answerIndex,
		SubmittedAt: now,
	}
	if err := g.store.AppendResponse(ctx, m.ID, round.ID, resp); err != nil {
		return 0, err
	}

	g.logger.Debug("answer recorded",
		"match_id", m.ID, "round", round.RoundCount, "user_id", userID)
	return answerIndex, nil
}

// ActiveRoundView is what a participant sees while a round is open.
type ActiveRoundView struct {
	MatchID            string   `json:"match_id"`
	QuestionID         string   `json:"question_id"`
	Question           string   `json:"question"`
	Difficulty         int      `json:"difficulty"`
	PossibleAnswers    []string `json:"possible_answers"`
	Status             string   `json:"status"`
	RemainingSeconds   int      `json:"remaining_seconds"`
	CurrentRound       int      `json:"current_round"`
	TotalRounds        int      `json:"total_rounds"`
	CorrectAnswerIndex *int     `json:"correct_answer_index,omitempty"`
}

// Per-caller answer flags.
const (
	QuestionAnswered    = "answered"
	QuestionNotAnswered = "not answered"
)

// ActiveRound returns the open round of a playing match.
func (g *AnswerGateway) ActiveRound(ctx context.Context, matchID string, caller Principal) (*ActiveRoundView, error) {
	m, err := g.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !m.IsInvited(caller.UserID) {
		return nil, apperrors.New(apperrors.CodeForbidden, "user is not a participant of this match")
	}
	if m.Status != models.MatchPlaying {
		return nil, apperrors.Newf(apperrors.CodeInvalidState, "match is %s", m.Status)
	}
	round := m.ActiveRound()
	if round == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "no active round")
	}

	remaining := round.RoundEndtime.Sub(g.clock.Now()).Seconds()
	view := &ActiveRoundView{
		MatchID:          m.ID,
		QuestionID:       round.QuestionID,
		Question:         round.Question,
		Difficulty:       round.Difficulty,
		PossibleAnswers:  round.PossibleAnswers,
		Status:           QuestionNotAnswered,
		RemainingSeconds: int(math.Max(0, math.Floor(remaining))),
		CurrentRound:     round.RoundCount,
		TotalRounds:      m.TotalRounds,
	}
	if round.ResponseBy(caller.UserID) != nil {
		view.Status = QuestionAnswered
	}
	if caller.IsAdmin() {
		idx := round.CorrectAnswerIndex
		view.CorrectAnswerIndex = &idx
	}
	return view, nil
}
