// workers/task_registry.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/panics"

	"trivia-match-runtime/apperrors"
)

type TaskState string

const (
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskCancelled TaskState = "cancelled"
	TaskFailed    TaskState = "failed"
)

func (s TaskState) Terminal() bool {
	return s != TaskRunning
}

// Job is a unit of background work. It must return once ctx is cancelled.
type Job func(ctx context.Context) error

// TaskHandle is a snapshot of a registered job.
type TaskHandle struct {
	Key        string     `json:"key"`
	State      TaskState  `json:"state"`
	Reason     string     `json:"reason,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type task struct {
	handle TaskHandle
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskRegistry runs named background jobs, at most one live job per key.
type TaskRegistry struct {
	mu     sync.Mutex
	tasks  map[string]*task
	wg     sync.WaitGroup
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewTaskRegistry(clock clockwork.Clock, logger *slog.Logger) *TaskRegistry {
	return &TaskRegistry{
		tasks:  make(map[string]*task),
		clock:  clock,
		logger: logger.With("component", "registry"),
	}
}

// Start spawns job under key. Conflict if key already runs a job; a key whose
// job has finished is replaced.
func (r *TaskRegistry) Start(key string, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tasks[key]; ok && !t.handle.State.Terminal() {
		return apperrors.Newf(apperrors.CodeConflict, "task %s is already running", key)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		handle: TaskHandle{Key: key, State: TaskRunning, StartedAt: r.clock.Now()},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.tasks[key] = t

	r.wg.Add(1)
	go r.run(ctx, t, job)

	r.logger.Info("task started", "key", key)
	return nil
}

func (r *TaskRegistry) run(ctx context.Context, t *task, job Job) {
	defer r.wg.Done()
	defer close(t.done)
	defer t.cancel()

	var err error
	recovered := panics.Try(func() { err = job(ctx) })

	state, reason := TaskCompleted, ""
	switch {
	case recovered != nil:
		state, reason = TaskFailed, fmt.Sprintf("panic: %v", recovered.Value)
		r.logger.Error("task panicked", "key", t.handle.Key, "panic", recovered.Value, "stack", string(recovered.Stack))
	case ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)):
		state = TaskCancelled
	case err != nil:
		state, reason = TaskFailed, err.Error()
		r.logger.Error("task failed", "key", t.handle.Key, "err", err)
	}

	finished := r.clock.Now()
	r.mu.Lock()
	t.handle.State = state
	t.handle.Reason = reason
	t.handle.FinishedAt = &finished
	r.mu.Unlock()

	r.logger.Info("task finished", "key", t.handle.Key, "state", state)
}

// Status returns the handle registered under key.
func (r *TaskRegistry) Status(key string) (TaskHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[key]
	if !ok {
		return TaskHandle{}, apperrors.Newf(apperrors.CodeNotFound, "task %s not found", key)
	}
	return t.handle, nil
}

// Done returns a channel closed when the job under key returns.
func (r *TaskRegistry) Done(key string) (<-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[key]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "task %s not found", key)
	}
	return t.done, nil
}

// Stop cancels the job under key and forgets it right away; the job
// observes the cancellation at its next suspension point.
func (r *TaskRegistry) Stop(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[key]
	if !ok {
		return apperrors.Newf(apperrors.CodeNotFound, "task %s not found", key)
	}
	delete(r.tasks, key)
	t.cancel()

	r.logger.Info("task stopped", "key", key)
	return nil
}

// List returns every registered handle ordered by key.
func (r *TaskRegistry) List() []TaskHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TaskHandle, 0, len(r.tasks))
	for _, key := range slices.Sorted(maps.Keys(r.tasks)) {
		out = append(out, r.tasks[key].handle)
	}
	return out
}

// Shutdown cancels all jobs and waits for them until ctx is done.
func (r *TaskRegistry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	for _, t := range r.tasks {
		t.cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
