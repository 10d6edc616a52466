// Package storage defines the persistence contracts used by the runtime and
// the HTTP services.
package storage

import (
	"context"
	"time"

	"trivia-match-runtime/models"
)

// MatchFilter narrows ListMatches. Zero values match everything.
type MatchFilter struct {
	Status models.MatchStatus
	// InvitedUserID keeps only matches that invited this user.
	InvitedUserID string
	// JoinedUserID keeps only matches this user has joined.
	JoinedUserID string
}

// MatchStore reads and writes match aggregates. Every mutation is a targeted
// update; none rewrites the whole aggregate.
type MatchStore interface {
	CreateMatch(ctx context.Context, m *models.Match) error
	// GetMatch returns the aggregate with rounds ordered by round_count and
	// responses ordered by submission time.
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]models.Match, error)
	DeleteMatch(ctx context.Context, id string) error

	// TransitionStatus moves a match from one status to another only if it is
	// currently in from. Returns InvalidState otherwise.
	TransitionStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error
	// AddJoined and RemoveJoined require status waiting_start.
	AddJoined(ctx context.Context, id, userID string) error
	RemoveJoined(ctx context.Context, id, userID string) error

	// AppendRound adds a round to a playing match. Conflict while another
	// round of the match is still unscored.
	AppendRound(ctx context.Context, matchID string, round *models.Round) error
	// AppendResponse adds a response to an unscored round. NotFound if the
	// round is unknown or closed, Conflict if the user already answered.
	AppendResponse(ctx context.Context, matchID, roundID string, resp *models.Response) error
	// SetRoundScore closes a round. Conflict if it was already scored.
	SetRoundScore(ctx context.Context, matchID, roundID string, scores models.ScoreList, correctAnswer string, at time.Time) error
	// Finalize writes final_score and ends a playing match in one update.
	Finalize(ctx context.Context, matchID string, final models.ScoreList, at time.Time) error
	// ResetToWaiting puts a playing match back to waiting_start, clearing
	// joined users, rounds and responses.
	ResetToWaiting(ctx context.Context, matchID string) error
}

// Catalog stores questions and users.
type Catalog interface {
	CreateQuestion(ctx context.Context, q *models.Question) error
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListQuestions(ctx context.Context) ([]models.Question, error)
	// UpdateQuestion refuses with InvalidState once any match lists the
	// question; DeleteQuestion refuses while a match that lists it has not
	// ended.
	UpdateQuestion(ctx context.Context, q *models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	CountQuestions(ctx context.Context, ids []string) (int64, error)

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context, ids []string) (int64, error)
}
