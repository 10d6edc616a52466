package gormstore

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
)

func (s *Store) CreateQuestion(ctx context.Context, q *models.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return storeError(s.db.WithContext(ctx).Create(q).Error, "question")
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	if err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, storeError(err, "question")
	}
	return &q, nil
}

func (s *Store) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var qs []models.Question
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&qs).Error; err != nil {
		return nil, storeError(err, "questions")
	}
	return qs, nil
}

// UpdateQuestion rewrites the content of a question that no match lists.
func (s *Store) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Question{}, "id = ?", q.ID).Error; err != nil {
			return storeError(err, "question")
		}
		used, err := questionInUse(tx, q.ID, true)
		if err != nil {
			return err
		}
		if used {
			return apperrors.New(apperrors.CodeInvalidState, "question is used by a match and cannot be edited")
		}
		err = tx.Model(&models.Question{}).Where("id = ?", q.ID).Updates(map[string]any{
			"question":    q.Question,
			"distractors": q.Distractors,
			"answer":      q.Answer,
			"difficulty":  q.Difficulty,
		}).Error
		if err != nil {
			return storeError(err, "question")
		}
		return storeError(tx.First(q, "id = ?", q.ID).Error, "question")
	})
}

// DeleteQuestion refuses while a waiting or playing match lists the question.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		used, err := questionInUse(tx, id, false)
		if err != nil {
			return err
		}
		if used {
			return apperrors.New(apperrors.CodeInvalidState, "question is used by a match that has not ended")
		}
		res := tx.Where("id = ?", id).Delete(&models.Question{})
		if res.Error != nil {
			return storeError(res.Error, "question")
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "question not found")
		}
		return nil
	})
}

// questionInUse reports whether a match lists id in question_ids. Ended
// matches only count when withEnded is set.
func questionInUse(tx *gorm.DB, id string, withEnded bool) (bool, error) {
	q := tx.Model(&models.Match{}).Select("id", "question_ids")
	if !withEnded {
		q = q.Where("status <> ?", models.MatchEnded)
	}
	var matches []models.Match
	if err := q.Find(&matches).Error; err != nil {
		return false, storeError(err, "matches")
	}
	for _, m := range matches {
		if slices.Contains(m.QuestionIDs, id) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountQuestions(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Question{}).Where("id IN ?", ids).Count(&n).Error
	return n, storeError(err, "questions")
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return storeError(s.db.WithContext(ctx).Create(u).Error, "user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, storeError(err, "user")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, storeError(err, "user")
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, storeError(err, "users")
	}
	return users, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return storeError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&n).Error
	return n, storeError(err, "users")
}
