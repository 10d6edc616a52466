// services/seed.go
package services

import (
	"context"
	"errors"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
)

// SeedPassword is the password of every demo account created by Seed.
const SeedPassword = "1234"

var seedUsers = []UserInput{
	{Name: "demo admin", Email: "admin@demo.test", Role: models.RoleAdmin},
	{Name: "player1", Email: "player1@demo.test", Role: models.RolePlayer},
	{Name: "player2", Email: "player2@demo.test", Role: models.RolePlayer},
}

var seedQuestions = []QuestionInput{
	{
		Question:    "What is the main goal of a recruitment process?",
		Distractors: []string{"Cutting operating costs", "Training current employees", "Improving company culture"},
		Answer:      "Finding the candidate that best fits the role",
		Difficulty:  2,
	},
	{
		Question:    "Which document sets the working conditions of an employee?",
		Distractors: []string{"The performance report", "The dismissal letter", "The HR policy"},
		Answer:      "The employment contract",
		Difficulty:  1,
	},
	{
		Question:    "Which technique is common when evaluating employee performance?",
		Distractors: []string{"Exit interviews", "Training sessions", "Workplace climate surveys"},
		Answer:      "Reviewing achieved objectives",
		Difficulty:  3,
	},
	{
		Question:    "What does staff turnover measure?",
		Distractors: []string{"Promotions to senior roles", "Role swaps inside the company", "Hours worked by employees"},
		Answer:      "Employees leaving the company",
		Difficulty:  2,
	},
}

// Seed loads demo accounts, questions and one waiting match inviting both
// demo players. It does nothing if the demo players already exist.
func Seed(ctx context.Context, catalog *CatalogService, matches *MatchService) (*models.Match, error) {
	_, err := catalog.catalog.GetUserByEmail(ctx, seedUsers[1].Email)
	switch {
	case err == nil:
		catalog.logger.Info("demo data already present")
		return nil, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	var players []string
	for _, in := range seedUsers {
		in.Password = SeedPassword
		u, err := catalog.CreateUser(ctx, in)
		if errors.Is(err, apperrors.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if u.Role == models.RolePlayer {
			players = append(players, u.ID)
		}
	}

	var questionIDs []string
	for _, in := range seedQuestions {
		q, err := catalog.CreateQuestion(ctx, in)
		if err != nil {
			return nil, err
		}
		questionIDs = append(questionIDs, q.ID)
	}

	m, err := matches.Create(ctx, MatchInput{
		Name:         "HR challenge: how much do you know about talent management?",
		Description:  "Recruitment, performance and turnover basics.",
		QuestionIDs:  questionIDs,
		InvitedIDs:   players,
		RoundTimeSec: models.DefaultRoundTimeSec,
	})
	if err != nil {
		return nil, err
	}
	catalog.logger.Info("demo data loaded", "match_id", m.ID, "players", len(players), "questions", len(questionIDs))
	return m, nil
}
