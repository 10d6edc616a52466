package services

import (
	"context"
	"testing"

	"trivia-match-runtime/models"
)

func TestSeedLoadsDemoDataOnce(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	catalog := newTestCatalogService(store)
	matches := NewMatchService(store, store, discardLogger())

	m, err := Seed(ctx, catalog, matches)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if m == nil || m.Status != models.MatchWaitingStart {
		t.Fatalf("match = %+v, want a waiting match", m)
	}
	if len(m.InvitedIDs) != 2 || len(m.QuestionIDs) != len(seedQuestions) {
		t.Fatalf("invited = %v, questions = %v, want 2 players and %d questions", m.InvitedIDs, m.QuestionIDs, len(seedQuestions))
	}

	again, err := Seed(ctx, catalog, matches)
	if err != nil || again != nil {
		t.Fatalf("second Seed = %+v, %v, want nil, nil", again, err)
	}
	all, err := matches.List(ctx, "")
	if err != nil || len(all) != 1 {
		t.Fatalf("matches = %d, %v, want 1", len(all), err)
	}
	users, err := catalog.ListUsers(ctx)
	if err != nil || len(users) != len(seedUsers) {
		t.Fatalf("users = %d, %v, want %d", len(users), err, len(seedUsers))
	}
}
