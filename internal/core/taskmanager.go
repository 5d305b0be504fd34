package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/valter-silva-au/todo/pkg/models"
)

// TaskStore is the subset of storage.TaskLog that TaskManager needs.
// Defining it here keeps core independent of the storage package.
type TaskStore interface {
	LoadActive() ([]models.Task, error)
	LoadArchive() ([]models.ArchivedTask, error)
	Commit(tasks []models.Task, now time.Time) ([]models.Task, int, error)
}

// TaskUpdate carries the fields of an edit. Empty fields keep the current
// value.
type TaskUpdate struct {
	Name    string
	Status  models.Status
	DueDate string
}

// TaskManager owns the active task list for a session and keeps it mirrored
// to the logs after every mutation.
type TaskManager interface {
	Load() error
	Tasks() []models.Task
	Archived() ([]models.ArchivedTask, error)
	Add(task models.Task) (models.Task, error)
	Edit(index int, upd TaskUpdate) (models.Task, error)
	Delete(index int) (models.Task, error)
	MarkComplete(index int) (models.Task, error)
	Flush() (int, error)
	Sorted() []models.Task
	Search(term string) []models.Task
	Statistics() (Statistics, error)
	Now() time.Time
}

// Option configures a TaskManager.
type Option func(*taskManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(tm *taskManager) { tm.now = now }
}

// WithEventLogger records every mutation on the given logger.
func WithEventLogger(l EventLogger) Option {
	return func(tm *taskManager) { tm.events = l }
}

type taskManager struct {
	store  TaskStore
	events EventLogger
	now    func() time.Time
	tasks  []models.Task
}

// NewTaskManager creates a TaskManager over store. The list starts empty;
// call Load to read the active log.
func NewTaskManager(store TaskStore, opts ...Option) TaskManager {
	tm := &taskManager{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

func (tm *taskManager) Now() time.Time { return tm.now() }

func (tm *taskManager) Load() error {
	tasks, err := tm.store.LoadActive()
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	tm.tasks = tasks
	return nil
}

func (tm *taskManager) Tasks() []models.Task {
	out := make([]models.Task, len(tm.tasks))
	copy(out, tm.tasks)
	return out
}

func (tm *taskManager) Archived() ([]models.ArchivedTask, error) {
	entries, err := tm.store.LoadArchive()
	if err != nil {
		return nil, fmt.Errorf("loading archived tasks: %w", err)
	}
	return entries, nil
}

func (tm *taskManager) Add(task models.Task) (models.Task, error) {
	task.Name = strings.TrimSpace(task.Name)
	task.Status = models.Status(strings.TrimSpace(string(task.Status)))
	task.DueDate = strings.TrimSpace(task.DueDate)
	if task.DueDate == "" {
		task.DueDate = models.NoDueDate
	}
	if err := ValidateTask(task); err != nil {
		return models.Task{}, fmt.Errorf("adding task: %w", err)
	}

	next := append(tm.Tasks(), task)
	archived, err := tm.commit(next)
	if err != nil {
		return models.Task{}, fmt.Errorf("adding task: %w", err)
	}

	tm.logEvent("task.added", map[string]any{
		"name":     task.Name,
		"status":   string(task.Status),
		"due_date": task.DueDate,
	})
	if archived > 0 {
		tm.logCompleted(task)
	}
	return task, nil
}

func (tm *taskManager) Edit(index int, upd TaskUpdate) (models.Task, error) {
	if err := tm.checkIndex(index); err != nil {
		return models.Task{}, fmt.Errorf("editing task: %w", err)
	}

	next := tm.Tasks()
	old := next[index]
	edited := old
	if name := strings.TrimSpace(upd.Name); name != "" {
		edited.Name = name
	}
	if status := strings.TrimSpace(string(upd.Status)); status != "" {
		edited.Status = models.Status(status)
	}
	if due := strings.TrimSpace(upd.DueDate); due != "" {
		edited.DueDate = due
	}
	if err := ValidateTaskUpdate(old, edited); err != nil {
		return models.Task{}, fmt.Errorf("editing task: %w", err)
	}
	next[index] = edited

	archived, err := tm.commit(next)
	if err != nil {
		return models.Task{}, fmt.Errorf("editing task: %w", err)
	}

	tm.logEvent("task.edited", map[string]any{
		"name":       edited.Name,
		"old_name":   old.Name,
		"old_status": string(old.Status),
		"new_status": string(edited.Status),
		"due_date":   edited.DueDate,
	})
	if archived > 0 {
		tm.logCompletedFrom(edited, old.Status)
	}
	return edited, nil
}

func (tm *taskManager) Delete(index int) (models.Task, error) {
	if err := tm.checkIndex(index); err != nil {
		return models.Task{}, fmt.Errorf("deleting task: %w", err)
	}

	current := tm.Tasks()
	removed := current[index]
	next := append(current[:index:index], current[index+1:]...)

	if _, err := tm.commit(next); err != nil {
		return models.Task{}, fmt.Errorf("deleting task: %w", err)
	}

	tm.logEvent("task.deleted", map[string]any{
		"name":   removed.Name,
		"status": string(removed.Status),
	})
	return removed, nil
}

func (tm *taskManager) MarkComplete(index int) (models.Task, error) {
	if err := tm.checkIndex(index); err != nil {
		return models.Task{}, fmt.Errorf("completing task: %w", err)
	}

	next := tm.Tasks()
	prev := next[index].Status
	next[index].Status = models.StatusDone
	completed := next[index]

	if _, err := tm.commit(next); err != nil {
		return models.Task{}, fmt.Errorf("completing task: %w", err)
	}

	tm.logCompletedFrom(completed, prev)
	return completed, nil
}

// Flush runs a save cycle on the current list: done tasks are archived and
// the rest rewritten. It returns how many tasks were archived.
func (tm *taskManager) Flush() (int, error) {
	archived, err := tm.commit(tm.Tasks())
	if err != nil {
		return 0, fmt.Errorf("saving tasks: %w", err)
	}
	return archived, nil
}

func (tm *taskManager) Sorted() []models.Task {
	return Sort(tm.tasks)
}

func (tm *taskManager) Search(term string) []models.Task {
	return Search(tm.tasks, term)
}

func (tm *taskManager) Statistics() (Statistics, error) {
	archived, err := tm.Archived()
	if err != nil {
		return Statistics{}, fmt.Errorf("computing statistics: %w", err)
	}
	return ComputeStatistics(tm.tasks, archived, tm.now()), nil
}

// commit persists next and only then adopts it as the in-memory list.
func (tm *taskManager) commit(next []models.Task) (int, error) {
	remaining, archived, err := tm.store.Commit(next, tm.now())
	if err != nil {
		return 0, err
	}
	tm.tasks = remaining
	if archived > 0 {
		tm.logEvent("task.archived", map[string]any{"count": archived})
	}
	return archived, nil
}

func (tm *taskManager) checkIndex(index int) error {
	if index < 0 || index >= len(tm.tasks) {
		return fmt.Errorf("%w: index %d with %d active task(s)", ErrInvalidSelection, index, len(tm.tasks))
	}
	return nil
}

func (tm *taskManager) logCompleted(t models.Task) {
	tm.logCompletedFrom(t, "")
}

func (tm *taskManager) logCompletedFrom(t models.Task, prev models.Status) {
	data := map[string]any{
		"name":     t.Name,
		"due_date": t.DueDate,
		"overdue":  IsOverdue(t.DueDate, tm.now()),
	}
	if prev != "" {
		data["old_status"] = prev.Kind().String()
	}
	tm.logEvent("task.completed", data)
}

// logEvent records an event. Failures are ignored: the event log is
// advisory and must never fail a task operation.
func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.events == nil {
		return
	}
	_ = tm.events.LogEvent(eventType, data)
}
