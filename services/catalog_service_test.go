package services

import (
	"context"
	"errors"
	"testing"

	"trivia-match-runtime/apperrors"
	"trivia-match-runtime/models"
)

func TestCreateQuestionNormalizes(t *testing.T) {
	svc := newTestCatalogService(openTempStore(t))
	q, err := svc.CreateQuestion(context.Background(), QuestionInput{
		Question:    "  Cafe\u0301 origin?  ",
		Distractors: []string{"Brazil", "Kenya", "Peru"},
		Answer:      "Ethiopia",
		Difficulty:  2,
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.Question != "Caf\u00e9 origin?" {
		t.Fatalf("question = %q, want NFC and trimmed", q.Question)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	svc := newTestCatalogService(openTempStore(t))
	valid := QuestionInput{Question: "2+2?", Distractors: []string{"1", "2", "3"}, Answer: "4", Difficulty: 1}
	tests := []struct {
		name   string
		mutate func(*QuestionInput)
	}{
		{name: "empty text", mutate: func(in *QuestionInput) { in.Question = "  " }},
		{name: "no answer", mutate: func(in *QuestionInput) { in.Answer = "" }},
		{name: "two distractors", mutate: func(in *QuestionInput) { in.Distractors = in.Distractors[:2] }},
		{name: "difficulty zero", mutate: func(in *QuestionInput) { in.Difficulty = 0 }},
		{name: "difficulty four", mutate: func(in *QuestionInput) { in.Difficulty = 4 }},
		{name: "distractor equals answer", mutate: func(in *QuestionInput) {
			in.Answer = "Lima"
			in.Distractors = []string{"LIMA", "Quito", "Bogotá"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Distractors = append([]string(nil), valid.Distractors...)
			tt.mutate(&in)
			if _, err := svc.CreateQuestion(context.Background(), in); !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("CreateQuestion() = %v, want InvalidArgument", err)
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalogService(openTempStore(t))

	u, err := svc.CreateUser(ctx, UserInput{Name: "Ana", Email: "Ana@Trivia.test", Password: "1234"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != models.RolePlayer || u.Email != "ana@trivia.test" || u.PasswordHash == "1234" {
		t.Fatalf("user = %+v, want player with lowered email and hashed password", u)
	}

	_, err = svc.CreateUser(ctx, UserInput{Name: "Other", Email: "ana@trivia.test", Password: "abcd"})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("duplicate email = %v, want Conflict", err)
	}
	for _, in := range []UserInput{
		{Name: "x", Email: "not-an-email", Password: "1234"},
		{Name: "x", Email: "x@trivia.test", Password: "12"},
		{Name: "x", Email: "x@trivia.test", Password: "1234", Role: "owner"},
	} {
		if _, err := svc.CreateUser(ctx, in); !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Fatalf("CreateUser(%+v) = %v, want InvalidArgument", in, err)
		}
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	svc := newTestCatalogService(store)
	for range 2 {
		if err := svc.EnsureAdmin(ctx, "admin@trivia.test", "1234"); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Role != models.RoleAdmin {
		t.Fatalf("users = %+v, want a single admin", users)
	}
}

func TestQuestionLockedWhileListed(t *testing.T) {
	ctx := context.Background()
	store := openTempStore(t)
	catalog := newTestCatalogService(store)
	matches := NewMatchService(store, store, discardLogger())

	in := QuestionInput{Question: "2+2?", Distractors: []string{"1", "2", "3"}, Answer: "4", Difficulty: 1}
	q, err := catalog.CreateQuestion(ctx, in)
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	spare, err := catalog.CreateQuestion(ctx, QuestionInput{Question: "3+3?", Distractors: []string{"5", "7", "9"}, Answer: "6", Difficulty: 1})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	u, err := catalog.CreateUser(ctx, UserInput{Name: "Ana", Email: "ana@example.com", Password: "pass1"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := matches.Create(ctx, MatchInput{Name: "Quiz", QuestionIDs: []string{q.ID}, InvitedIDs: []string{u.ID}}); err != nil {
		t.Fatalf("Create match: %v", err)
	}

	if err := catalog.DeleteQuestion(ctx, q.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("DeleteQuestion(listed) = %v, want InvalidState", err)
	}
	if _, err := catalog.GetQuestion(ctx, q.ID); err != nil {
		t.Fatalf("question must survive a refused delete: %v", err)
	}
	in.Answer = "four"
	if _, err := catalog.UpdateQuestion(ctx, q.ID, in); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("UpdateQuestion(listed) = %v, want InvalidState", err)
	}

	edited, err := catalog.UpdateQuestion(ctx, spare.ID, QuestionInput{Question: " 3 + 3? ", Distractors: []string{"5", "7", "9"}, Answer: "6", Difficulty: 3})
	if err != nil {
		t.Fatalf("UpdateQuestion(unlisted): %v", err)
	}
	if edited.Question != "3 + 3?" || edited.Difficulty != 3 {
		t.Fatalf("edited = %+v, want trimmed text and difficulty 3", edited)
	}
	if _, err := catalog.UpdateQuestion(ctx, spare.ID, QuestionInput{Question: "x", Distractors: []string{"a"}, Answer: "b", Difficulty: 1}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("UpdateQuestion(invalid) = %v, want InvalidArgument", err)
	}
	if err := catalog.DeleteQuestion(ctx, spare.ID); err != nil {
		t.Fatalf("DeleteQuestion(unlisted): %v", err)
	}
}
