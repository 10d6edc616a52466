package workers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"trivia-match-runtime/models"
	"trivia-match-runtime/storage/gormstore"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type harness struct {
	store    *gormstore.Store
	clock    *clockwork.FakeClock
	registry *TaskRegistry
	archiver *recordingArchiver
	worker   *MatchWorker
	ctrl     *Controller
	sched    *MatchScheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := gormstore.Open(gormstore.DriverSQLite, filepath.Join(t.TempDir(), "trivia.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	h := &harness{
		store:    store,
		clock:    clockwork.NewFakeClockAt(t0),
		archiver: &recordingArchiver{},
	}
	log := discardLogger()
	h.registry = NewTaskRegistry(h.clock, log)
	h.worker = NewMatchWorker(store, store, h.archiver, h.clock, log)
	h.ctrl = NewController(store, h.registry, h.worker, h.clock, log)
	h.sched = NewMatchScheduler(store, h.ctrl, time.Second, h.clock, log)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.registry.Shutdown(ctx)
		_ = store.Close()
	})
	return h
}

func (h *harness) question(t *testing.T, text, answer string, difficulty int) *models.Question {
	t.Helper()
	q := &models.Question{
		Question:    text,
		Distractors: models.StringList{answer + " (a)", answer + " (b)", answer + " (c)"},
		Answer:      answer,
		Difficulty:  difficulty,
	}
	if err := h.store.CreateQuestion(context.Background(), q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

// match creates a match in waiting_start with the given joined users.
func (h *harness) match(t *testing.T, invited, joined []string, questions ...*models.Question) *models.Match {
	t.Helper()
	ctx := context.Background()
	m := &models.Match{
		Name:         "Scenario",
		Status:       models.MatchWaitingStart,
		InvitedIDs:   invited,
		RoundTimeSec: 5,
		TotalRounds:  len(questions),
	}
	for _, q := range questions {
		m.QuestionIDs = append(m.QuestionIDs, q.ID)
	}
	if err := h.store.CreateMatch(ctx, m); err != nil {
		t.Fatalf("create match: %v", err)
	}
	for _, id := range joined {
		if err := h.store.AddJoined(ctx, m.ID, id); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return m
}

func (h *harness) get(t *testing.T, id string) *models.Match {
	t.Helper()
	m, err := h.store.GetMatch(context.Background(), id)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	return m
}

// waitForTimer blocks until the worker sleeps on its round deadline.
func (h *harness) waitForTimer(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("worker never waited on a deadline: %v", err)
	}
}

type recordingArchiver struct {
	mu      sync.Mutex
	matches []*models.Match
}

func (a *recordingArchiver) Archive(_ context.Context, m *models.Match) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.matches = append(a.matches, m)
	return nil
}

func (a *recordingArchiver) archived() []*models.Match {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*models.Match(nil), a.matches...)
}
