// services/match_service.go
package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/gosimple/slug"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

type MatchService struct {
	store   storage.MatchStore
	catalog storage.Catalog
	logger  *slog.Logger
}

func NewMatchService(store storage.MatchStore, catalog storage.Catalog, logger *slog.Logger) *MatchService {
	return &MatchService{
		store:   store,
		catalog: catalog,
		logger:  logger.With("component", "matches"),
	}
}

type MatchInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	QuestionIDs  []string `json:"question_ids"`
	InvitedIDs   []string `json:"user_ids_invitations"`
	RoundTimeSec int      `json:"round_time_sec"`
}

// Create validates the input against the catalog and stores a new match in
// waiting_start.
func (s *MatchService) Create(ctx context.Context, in MatchInput) (*models.Match, error) {
	name := cleanText(in.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "name is required")
	}
	questionIDs := dedupe(in.QuestionIDs)
	invitedIDs := dedupe(in.InvitedIDs)
	if len(questionIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "at least one question is required")
	}
	if len(invitedIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "at least one invitee is required")
	}

	roundTime := in.RoundTimeSec
	if roundTime == 0 {
		roundTime = models.DefaultRoundTimeSec
	}
	if roundTime < 1 || roundTime > models.MaxRoundTimeSec {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument,
			"round_time_sec must be between 1 and %d", models.MaxRoundTimeSec)
	}

	n, err := s.catalog.CountQuestions(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	if int(n) != len(questionIDs) {
		return nil, apperrors.New(apperrors.CodeNotFound, "one or more questions do not exist")
	}
	n, err = s.catalog.CountUsers(ctx, invitedIDs)
	if err != nil {
		return nil, err
	}
	if int(n) != len(invitedIDs) {
		return nil, apperrors.New(apperrors.CodeNotFound, "one or more invited users do not exist")
	}

	m := &models.Match{
		Name:         name,
		Slug:         slug.Make(name),
		Description:  cleanText(in.Description),
		Status:       models.MatchWaitingStart,
		InvitedIDs:   invitedIDs,
		JoinedIDs:    models.StringList{},
		QuestionIDs:  questionIDs,
		RoundTimeSec: roundTime,
		TotalRounds:  len(questionIDs),
	}
	if err := s.store.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info("match created", "match_id", m.ID, "rounds", m.TotalRounds, "invited", len(m.InvitedIDs))
	return m, nil
}

func (s *MatchService) List(ctx context.Context, status models.MatchStatus) ([]models.Match, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument, "unknown status %q", status)
	}
	return s.store.ListMatches(ctx, storage.MatchFilter{Status: status})
}

// ForUser lists the matches that invited userID: invitations while
// waiting_start, live ones while playing, played ones once ended.
func (s *MatchService) ForUser(ctx context.Context, userID string, status models.MatchStatus) ([]models.Match, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument, "unknown status %q", status)
	}
	return s.store.ListMatches(ctx, storage.MatchFilter{Status: status, InvitedUserID: userID})
}

func (s *MatchService) Delete(ctx context.Context, id string) error {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == models.MatchPlaying {
		return apperrors.New(apperrors.CodeInvalidState, "cannot delete a match that is being played")
	}
	if err := s.store.DeleteMatch(ctx, id); err != nil {
		return err
	}
	s.logger.Info("match deleted", "match_id", id)
	return nil
}

// Join confirms participation of an invitee. A user can be committed to a
// single waiting or playing match at a time.
func (s *MatchService) Join(ctx context.Context, id, userID string) (*models.Match, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsInvited(userID) {
		return nil, apperrors.New(apperrors.CodeForbidden, "user is not invited to this match")
	}
	if m.Status != models.MatchWaitingStart {
		return nil, apperrors.Newf(apperrors.CodeInvalidState, "cannot join a match that is %s", m.Status)
	}
	if m.HasJoined(userID) {
		return nil, apperrors.New(apperrors.CodeConflict, "user already joined this match")
	}

	for _, status := range []models.MatchStatus{models.MatchWaitingStart, models.MatchPlaying} {
		others, err := s.store.ListMatches(ctx, storage.MatchFilter{Status: status, JoinedUserID: userID})
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			if other.ID != id {
				return nil, apperrors.New(apperrors.CodeConflict, "user already joined another live match").
					WithMetadata("match_id", other.ID)
			}
		}
	}

	if err := s.store.AddJoined(ctx, id, userID); err != nil {
		return nil, err
	}
	s.logger.Info("user joined match", "match_id", id, "user_id", userID)
	return s.store.GetMatch(ctx, id)
}

func (s *MatchService) Leave(ctx context.Context, id, userID string) (*models.Match, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsInvited(userID) {
		return nil, apperrors.New(apperrors.CodeForbidden, "user is not invited to this match")
	}
	if m.Status != models.MatchWaitingStart {
		return nil, apperrors.Newf(apperrors.CodeInvalidState, "cannot leave a match that is %s", m.Status)
	}
	if err := s.store.RemoveJoined(ctx, id, userID); err != nil {
		return nil, err
	}
	s.logger.Info("user left match", "match_id", id, "user_id", userID)
	return s.store.GetMatch(ctx, id)
}

// MatchDetails is the caller-specific view of a match.
type MatchDetails struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description"`
	Status       models.MatchStatus `json:"status"`
	InvitedIDs   []string           `json:"invited_ids"`
	JoinedIDs    []string           `json:"joined_ids"`
	RoundTimeSec int                `json:"round_time_sec"`
	TotalRounds  int                `json:"total_rounds"`
	Rounds       []RoundDetails     `json:"rounds"`
	FinalScore   models.ScoreList   `json:"final_score,omitempty"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	EndedAt      *time.Time         `json:"ended_at,omitempty"`
}

type RoundDetails struct {
	QuestionID         string            `json:"question_id"`
	RoundCount         int               `json:"round_count"`
	Question           string            `json:"question"`
	Difficulty         int               `json:"difficulty"`
	PossibleAnswers    []string          `json:"possible_answers"`
	RoundEndtime       time.Time         `json:"round_endtime"`
	Closed             bool              `json:"closed"`
	Responses          []models.Response `json:"responses"`
	RoundScore         models.ScoreList  `json:"round_score,omitempty"`
	CorrectAnswer      string            `json:"correct_answer,omitempty"`
	CorrectAnswerIndex *int              `json:"correct_answer_index,omitempty"`
}

// Details returns the match as seen by caller. Other participants' answers
// and the correct answer are only shown for closed rounds; the answer index
// is only shown to admins.
func (s *MatchService) Details(ctx context.Context, id string, caller Principal) (*MatchDetails, error) {
	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !m.IsInvited(caller.UserID) {
		return nil, apperrors.New(apperrors.CodeForbidden, "user is not a participant of this match")
	}

	d := &MatchDetails{
		ID:           m.ID,
		Name:         m.Name,
		Slug:         m.Slug,
		Description:  m.Description,
		Status:       m.Status,
		InvitedIDs:   m.InvitedIDs,
		JoinedIDs:    m.JoinedIDs,
		RoundTimeSec: m.RoundTimeSec,
		TotalRounds:  m.TotalRounds,
		Rounds:       make([]RoundDetails, 0, len(m.Rounds)),
		FinalScore:   m.FinalScore,
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
	}
	for _, r := range m.Rounds {
		rd := RoundDetails{
			QuestionID:      r.QuestionID,
			RoundCount:      r.RoundCount,
			Question:        r.Question,
			Difficulty:      r.Difficulty,
			PossibleAnswers: r.PossibleAnswers,
			RoundEndtime:    r.RoundEndtime,
			Closed:          r.Closed(),
			Responses:       []models.Response{},
		}
		switch {
		case r.Closed():
			rd.Responses = r.Responses
			rd.RoundScore = r.RoundScore
			rd.CorrectAnswer = r.CorrectAnswer
		case !caller.IsAdmin():
			if own := r.ResponseBy(caller.UserID); own != nil {
				rd.Responses = []models.Response{*own}
			}
		default:
			rd.Responses = r.Responses
		}
		if caller.IsAdmin() {
			idx := r.CorrectAnswerIndex
			rd.CorrectAnswerIndex = &idx
		}
		d.Rounds = append(d.Rounds, rd)
	}
	return d, nil
}

// dedupe drops empty and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) models.StringList {
	out := make(models.StringList, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
