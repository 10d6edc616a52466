// services/catalog_service.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
	"trivia-match-runtime/storage"
)

const minPasswordLen = 4

type CatalogService struct {
	catalog    storage.Catalog
	logger     *slog.Logger
	bcryptCost int
}

func NewCatalogService(catalog storage.Catalog, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog:    catalog,
		logger:     logger.With("component", "catalog"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

type QuestionInput struct {
	Question    string   `json:"question"`
	Distractors []string `json:"distractors"`
	Answer      string   `json:"answer"`
	Difficulty  int      `json:"difficulty"`
}

func (s *CatalogService) CreateQuestion(ctx context.Context, in QuestionInput) (*models.Question, error) {
	q, err := in.question()
	if err != nil {
		return nil, err
	}
	if err := s.catalog.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("question created", "question_id", q.ID, "difficulty", q.Difficulty)
	return q, nil
}

// UpdateQuestion replaces the content of a question no match has listed yet.
func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (*models.Question, error) {
	q, err := in.question()
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.catalog.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("question updated", "question_id", q.ID)
	return q, nil
}

func (in QuestionInput) question() (*models.Question, error) {
	q := &models.Question{
		Question:   cleanText(in.Question),
		Answer:     cleanText(in.Answer),
		Difficulty: in.Difficulty,
	}
	for _, d := range in.Distractors {
		q.Distractors = append(q.Distractors, cleanText(d))
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *CatalogService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.catalog.GetQuestion(ctx, id)
}

func (s *CatalogService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.catalog.ListQuestions(ctx)
}

// DeleteQuestion refuses with InvalidState while a waiting or playing match
// lists the question.
func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.catalog.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.logger.Info("question deleted", "question_id", id)
	return nil
}

// cleanText trims and NFC-normalizes user supplied text.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validateQuestion(q *models.Question) error {
	if q.Question == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "question text is required")
	}
	if q.Answer == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "answer is required")
	}
	if len(q.Distractors) != models.DistractorCount {
		return apperrors.Newf(apperrors.CodeInvalidArgument, "exactly %d distractors are required", models.DistractorCount)
	}
	if q.Difficulty < models.MinDifficulty || q.Difficulty > models.MaxDifficulty {
		return apperrors.Newf(apperrors.CodeInvalidArgument,
			"difficulty must be between %d and %d", models.MinDifficulty, models.MaxDifficulty)
	}

	fold := cases.Fold()
	seen := map[string]struct{}{fold.String(q.Answer): {}}
	for _, d := range q.Distractors {
		if d == "" {
			return apperrors.New(apperrors.CodeInvalidArgument, "distractors cannot be empty")
		}
		key := fold.String(d)
		if _, dup := seen[key]; dup {
			return apperrors.Newf(apperrors.CodeInvalidArgument, "option %q is repeated", d)
		}
		seen[key] = struct{}{}
	}
	return nil
}

type UserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func (s *CatalogService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in.Name = cleanText(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RolePlayer
	}
	if in.Name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "email is invalid")
	}
	if !in.Role.Valid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument, "role %q is invalid", in.Role)
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperrors.Newf(apperrors.CodeInvalidArgument, "password must have at least %d characters", minPasswordLen)
	}

	_, err := s.catalog.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperrors.New(apperrors.CodeConflict, "email already registered")
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "hash password", err)
	}
	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		PasswordHash: string(hash),
	}
	if err := s.catalog.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *CatalogService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.catalog.GetUser(ctx, id)
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.catalog.ListUsers(ctx)
}

func (s *CatalogService) DeleteUser(ctx context.Context, id string) error {
	return s.catalog.DeleteUser(ctx, id)
}

// EnsureAdmin creates the bootstrap administrator if no user has that email.
func (s *CatalogService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.catalog.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	_, err = s.CreateUser(ctx, UserInput{
		Name:     "admin",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	return err
}
