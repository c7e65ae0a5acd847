package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/contentd/internal/models"
)

// TaskRecord tracks one background task: its lifecycle state, item progress,
// and final result. All mutation goes through the TaskManager.
type TaskRecord struct {
	ID           string
	URL          string
	Instructions string
	Status       models.TaskStatus
	Progress     int
	Total        int
	Result       *models.TaskResult
	Error        string
	StartedAt    time.Time
	CompletedAt  *time.Time

	mu sync.RWMutex
}

// Snapshot returns a thread-safe copy of the task state.
func (t *TaskRecord) Snapshot() TaskRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TaskRecord{
		ID:           t.ID,
		URL:          t.URL,
		Instructions: t.Instructions,
		Status:       t.Status,
		Progress:     t.Progress,
		Total:        t.Total,
		Result:       t.Result,
		Error:        t.Error,
		StartedAt:    t.StartedAt,
		CompletedAt:  t.CompletedAt,
	}
}

// TaskManager tracks background task runs. Tasks are independent and own
// their items, fields, and table; the manager only shares immutable
// snapshots.
type TaskManager struct {
	tasks map[string]*TaskRecord
	mu    sync.RWMutex

	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewTaskManager creates a task manager around an orchestrator.
func NewTaskManager(orchestrator *Orchestrator, logger *slog.Logger) *TaskManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskManager{
		tasks:        make(map[string]*TaskRecord),
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Launch starts a task in the background and returns its pending record.
// The run uses its own context: a launched task runs to completion or fatal
// parse failure regardless of the submitting request's lifetime.
func (m *TaskManager) Launch(url, instructions string, creds *models.AuthCredentials) *TaskRecord {
	task := &TaskRecord{
		ID:           uuid.New().String(),
		URL:          url,
		Instructions: instructions,
		Status:       models.TaskStatusPending,
		StartedAt:    time.Now(),
	}

	m.mu.Lock()
	m.tasks[task.ID] = task
	m.mu.Unlock()

	m.logger.Info("task launched", "task_id", task.ID, "url", url)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error("task goroutine panicked", "task_id", task.ID, "panic", rec)
				m.fail(task, nil, fmt.Errorf("internal panic: %v", rec))
			}
		}()

		task.mu.Lock()
		task.Status = models.TaskStatusRunning
		task.mu.Unlock()

		result, err := m.orchestrator.RunTask(context.Background(), task.ID, url, instructions, creds,
			func(done, total int) {
				task.mu.Lock()
				task.Progress = done
				task.Total = total
				task.mu.Unlock()
			})
		if err != nil {
			m.fail(task, result, err)
			return
		}
		m.complete(task, result)
	}()

	return task
}

// Get retrieves a task record by ID, or nil if unknown.
func (m *TaskManager) Get(id string) *TaskRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tasks[id]
}

// List returns snapshots of all tasks, most recent first.
func (m *TaskManager) List() []TaskRecord {
	m.mu.RLock()
	tasks := make([]*TaskRecord, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	m.mu.RUnlock()

	snapshots := make([]TaskRecord, 0, len(tasks))
	for _, task := range tasks {
		snapshots = append(snapshots, task.Snapshot())
	}
	slices.SortFunc(snapshots, func(a, b TaskRecord) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return snapshots
}

func (m *TaskManager) complete(task *TaskRecord, result *models.TaskResult) {
	task.mu.Lock()
	task.Status = result.Status
	task.Result = result
	now := time.Now()
	task.CompletedAt = &now
	task.mu.Unlock()

	m.logger.Info("task finished", "task_id", task.ID, "status", result.Status, "items", len(result.Items))
}

func (m *TaskManager) fail(task *TaskRecord, result *models.TaskResult, err error) {
	task.mu.Lock()
	task.Status = models.TaskStatusFailed
	task.Result = result
	task.Error = err.Error()
	now := time.Now()
	task.CompletedAt = &now
	task.mu.Unlock()

	m.logger.Error("task failed", "task_id", task.ID, "error", err)
}
