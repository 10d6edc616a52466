package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"trivia-match-runtime/models"
	"trivia-match-runtime/storage/gormstore"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTempStore(t *testing.T) *gormstore.Store {
	t.Helper()
	store, err := gormstore.Open(gormstore.DriverSQLite, filepath.Join(t.TempDir(), "trivia.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestCatalogService(store *gormstore.Store) *CatalogService {
	s := NewCatalogService(store, discardLogger())
	s.bcryptCost = bcrypt.MinCost
	return s
}

// playingMatch stores a playing match invited to A and B with one open
// round on question q1 whose deadline is t0+5s and whose answer is option 3.
func playingMatch(t *testing.T, store *gormstore.Store) (*models.Match, *models.Round) {
	t.Helper()
	ctx := context.Background()
	m := &models.Match{
		Name:         "Gateway",
		Status:       models.MatchPlaying,
		InvitedIDs:   models.StringList{"A", "B"},
		JoinedIDs:    models.StringList{"A", "B"},
		QuestionIDs:  models.StringList{"q1", "q2"},
		RoundTimeSec: 5,
		TotalRounds:  2,
	}
	if err := store.CreateMatch(ctx, m); err != nil {
		t.Fatalf("create match: %v", err)
	}
	r := &models.Round{
		QuestionID:         "q1",
		RoundCount:         1,
		Question:           "Capital of Peru?",
		Difficulty:         1,
		PossibleAnswers:    models.StringList{"Quito", "Bogotá", "Lima", "Caracas"},
		CorrectAnswerIndex: 2,
		RoundEndtime:       t0.Add(5 * time.Second),
	}
	if err := store.AppendRound(ctx, m.ID, r); err != nil {
		t.Fatalf("append round: %v", err)
	}
	return m, r
}

func fakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(t0)
}
