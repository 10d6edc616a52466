package gormstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

// joinAttempts bounds the compare-and-swap loop on joined_ids.
const joinAttempts = 5

func (s *Store) CreateMatch(ctx context.Context, m *models.Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedIDs == nil {
		m.JoinedIDs = models.StringList{}
	}
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	return storeError(err, "match")
}

func (s *Store) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	err := s.db.WithContext(ctx).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB {
			return db.Order("round_count ASC")
		}).
		Preload("Rounds.Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at ASC, id ASC")
		}).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, storeError(err, "match")
	}
	return &m, nil
}

// ListMatches returns matches without their rounds, newest first.
func (s *Store) ListMatches(ctx context.Context, filter storage.MatchFilter) ([]models.Match, error) {
	q := s.db.WithContext(ctx).Model(&models.Match{}).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var matches []models.Match
	if err := q.Find(&matches).Error; err != nil {
		return nil, storeError(err, "matches")
	}

	if filter.InvitedUserID == "" && filter.JoinedUserID == "" {
		return matches, nil
	}
	out := matches[:0]
	for _, m := range matches {
		if filter.InvitedUserID != "" && !m.IsInvited(filter.InvitedUserID) {
			continue
		}
		if filter.JoinedUserID != "" && !m.HasJoined(filter.JoinedUserID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&models.Response{}).Error; err != nil {
			return storeError(err, "responses")
		}
		if err := tx.Where("match_id = ?", id).Delete(&models.Round{}).Error; err != nil {
			return storeError(err, "rounds")
		}
		res := tx.Where("id = ?", id).Delete(&models.Match{})
		if res.Error != nil {
			return storeError(res.Error, "match")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "match not found")
		}
		return nil
	})
}

func (s *Store) TransitionStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error {
	updates := map[string]any{"status": to}
	switch to {
	case models.MatchPlaying:
		updates["started_at"] = at
	case models.MatchEnded:
		updates["ended_at"] = at
	}
	res := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return storeError(res.Error, "match")
	}
	if res.RowsAffected == 0 {
		return s.statusMismatch(ctx, id, from)
	}
	return nil
}

func (s *Store) AddJoined(ctx context.Context, id, userID string) error {
	return s.swapJoined(ctx, id, func(m *models.Match) (models.StringList, error) {
		if !m.IsInvited(userID) {
			return nil, apperrors.New(apperrors.CodeForbidden, "user is not invited to this match")
		}
		if m.HasJoined(userID) {
			return nil, apperrors.New(apperrors.CodeConflict, "user already joined this match")
		}
		return append(slices.Clone(m.JoinedIDs), userID), nil
	})
}

func (s *Store) RemoveJoined(ctx context.Context, id, userID string) error {
	return s.swapJoined(ctx, id, func(m *models.Match) (models.StringList, error) {
		i := slices.Index(m.JoinedIDs, userID)
		if i < 0 {
			return nil, apperrors.New(apperrors.CodeNotFound, "user has not joined this match")
		}
		return slices.Delete(slices.Clone(m.JoinedIDs), i, i+1), nil
	})
}

// swapJoined rewrites joined_ids only if nobody changed it since it was read.
func (s *Store) swapJoined(ctx context.Context, id string, next func(*models.Match) (models.StringList, error)) error {
	db := s.db.WithContext(ctx)
	for range joinAttempts {
		var m models.Match
		err := db.Select("id", "status", "invited_ids", "joined_ids").First(&m, "id = ?", id).Error
		if err != nil {
			return storeError(err, "match")
		}
		if m.Status != models.MatchWaitingStart {
			return apperrors.Newf(apperrors.CodeInvalidState, "match is %s", m.Status)
		}
		joined, err := next(&m)
		if err != nil {
			return err
		}
		res := db.Model(&models.Match{}).
			Where("id = ? AND status = ? AND joined_ids = ?", id, models.MatchWaitingStart, m.JoinedIDs).
			Update("joined_ids", joined)
		if res.Error != nil {
			return storeError(res.Error, "match")
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeConflict, "match was modified concurrently, retry")
}

func (s *Store) AppendRound(ctx context.Context, matchID string, round *models.Round) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Match
		if err := tx.Select("id", "status").First(&m, "id = ?", matchID).Error; err != nil {
			return storeError(err, "match")
		}
		if m.Status != models.MatchPlaying {
			return apperrors.Newf(apperrors.CodeInvalidState, "match is %s", m.Status)
		}

		var open int64
		if err := tx.Model(&models.Round{}).
			Where("match_id = ? AND scored_at IS NULL", matchID).
			Count(&open).Error; err != nil {
			return storeError(err, "rounds")
		}
		if open > 0 {
			return apperrors.New(apperrors.CodeConflict, "match already has an active round")
		}

		if round.ID == "" {
			round.ID = uuid.NewString()
		}
		round.MatchID = matchID
		round.ResponseCount = 0
		round.RoundScore = nil
		round.ScoredAt = nil
		if err := tx.Omit(clause.Associations).Create(round).Error; err != nil {
			return storeError(err, "round")
		}
		return nil
	})
}

// AppendResponse bumps the round's response counter under the "still open"
// condition first. The update row-locks the round, so a concurrent close waits
// for this transaction and concurrent answers to the same round serialize.
func (s *Store) AppendResponse(ctx context.Context, matchID, roundID string, resp *models.Response) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Round{}).
			Where("id = ? AND match_id = ? AND scored_at IS NULL", roundID, matchID).
			UpdateColumn("response_count", gorm.Expr("response_count + 1"))
		if res.Error != nil {
			return storeError(res.Error, "round")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "round already finalized or unknown")
		}

		var dup int64
		if err := tx.Model(&models.Response{}).
			Where("round_id = ? AND user_id = ?", roundID, resp.UserID).
			Count(&dup).Error; err != nil {
			return storeError(err, "responses")
		}
		if dup > 0 {
			return apperrors.New(apperrors.CodeConflict, "answer already submitted for this round")
		}

		if resp.ID == "" {
			resp.ID = uuid.NewString()
		}
		resp.MatchID = matchID
		resp.RoundID = roundID
		if err := tx.Create(resp).Error; err != nil {
			return storeError(err, "response")
		}
		return nil
	})
}

func (s *Store) SetRoundScore(ctx context.Context, matchID, roundID string, scores models.ScoreList, correctAnswer string, at time.Time) error {
	if scores == nil {
		scores = models.ScoreList{}
	}
	db := s.db.WithContext(ctx)
	res := db.Model(&models.Round{}).
		Where("id = ? AND match_id = ? AND scored_at IS NULL", roundID, matchID).
		Updates(map[string]any{
			"round_score":    scores,
			"correct_answer": correctAnswer,
			"scored_at":      at,
		})
	if res.Error != nil {
		return storeError(res.Error, "round")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := db.Model(&models.Round{}).Where("id = ? AND match_id = ?", roundID, matchID).Count(&n).Error; err != nil {
		return storeError(err, "round")
	}
	if n == 0 {
		return apperrors.New(apperrors.CodeNotFound, "round not found")
	}
	return apperrors.New(apperrors.CodeConflict, "round already scored")
}

func (s *Store) Finalize(ctx context.Context, matchID string, final models.ScoreList, at time.Time) error {
	if final == nil {
		final = models.ScoreList{}
	}
	res := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, models.MatchPlaying).
		Updates(map[string]any{
			"status":      models.MatchEnded,
			"final_score": final,
			"ended_at":    at,
		})
	if res.Error != nil {
		return storeError(res.Error, "match")
	}
	if res.RowsAffected == 0 {
		return s.statusMismatch(ctx, matchID, models.MatchPlaying)
	}
	return nil
}

func (s *Store) ResetToWaiting(ctx context.Context, matchID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Match{}).
			Where("id = ? AND status = ?", matchID, models.MatchPlaying).
			Updates(map[string]any{
				"status":      models.MatchWaitingStart,
				"joined_ids":  models.StringList{},
				"final_score": nil,
				"started_at":  nil,
			})
		if res.Error != nil {
			return storeError(res.Error, "match")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeInvalidState, "match is not playing")
		}
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Response{}).Error; err != nil {
			return storeError(err, "responses")
		}
		if err := tx.Where("match_id = ?", matchID).Delete(&models.Round{}).Error; err != nil {
			return storeError(err, "rounds")
		}
		return nil
	})
}

// statusMismatch explains why a conditional status update touched no row.
func (s *Store) statusMismatch(ctx context.Context, id string, want models.MatchStatus) error {
	var m models.Match
	if err := s.db.WithContext(ctx).Select("id", "status").First(&m, "id = ?", id).Error; err != nil {
		return storeError(err, "match")
	}
	return apperrors.Newf(apperrors.CodeInvalidState, "match is %s, expected %s", m.Status, want)
}
