package core

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/todo/pkg/models"
)

var tmNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// memStore implements TaskStore in memory. Commit mirrors storage.TaskLog:
// done tasks move to the archive and the rest become the active list.
type memStore struct {
	active    []models.Task
	archive   []models.ArchivedTask
	commitErr error
	loadErr   error
	commits   int
}

func (s *memStore) LoadActive() ([]models.Task, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]models.Task(nil), s.active...), nil
}

func (s *memStore) LoadArchive() ([]models.ArchivedTask, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]models.ArchivedTask(nil), s.archive...), nil
}

func (s *memStore) Commit(tasks []models.Task, now time.Time) ([]models.Task, int, error) {
	if s.commitErr != nil {
		return nil, 0, s.commitErr
	}
	s.commits++
	var remaining []models.Task
	archived := 0
	for _, t := range tasks {
		if t.Status.IsDone() {
			s.archive = append(s.archive, models.ArchivedTask{Task: t, CompletionDate: models.FormatDate(now)})
			archived++
			continue
		}
		remaining = append(remaining, t)
	}
	s.active = append([]models.Task(nil), remaining...)
	return remaining, archived, nil
}

// recordingLogger implements EventLogger and keeps every event.
type recordingLogger struct {
	types []string
	data  []map[string]any
	err   error
}

func (l *recordingLogger) LogEvent(eventType string, data map[string]any) error {
	l.types = append(l.types, eventType)
	l.data = append(l.data, data)
	return l.err
}

func newTestManager(t *testing.T, store *memStore, opts ...Option) TaskManager {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return tmNow })}, opts...)
	tm := NewTaskManager(store, opts...)
	if err := tm.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tm
}

func task(name, status, due string) models.Task {
	return models.Task{Name: name, Status: models.Status(status), DueDate: due}
}

// --- Load ---

func TestLoad_Error(t *testing.T) {
	tm := NewTaskManager(&memStore{loadErr: errors.New("disk gone")})
	if err := tm.Load(); err == nil {
		t.Fatal("expected load error")
	}
}

func TestTasks_ReturnsCopy(t *testing.T) {
	tm := newTestManager(t, &memStore{active: []models.Task{task("a", "urgent", models.NoDueDate)}})

	got := tm.Tasks()
	got[0].Name = "changed"
	if tm.Tasks()[0].Name != "a" {
		t.Error("Tasks must return a copy")
	}
}

// --- Add ---

func TestAdd_NormalizesAndPersists(t *testing.T) {
	store := &memStore{}
	tm := newTestManager(t, store)

	added, err := tm.Add(task("  Buy milk  ", " urgent ", ""))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := task("Buy milk", "urgent", models.NoDueDate)
	if added != want {
		t.Errorf("Add returned %+v, want %+v", added, want)
	}
	if !reflect.DeepEqual(store.active, []models.Task{want}) {
		t.Errorf("store active = %+v", store.active)
	}
	if store.commits != 1 {
		t.Errorf("commits = %d, want 1", store.commits)
	}
}

func TestAdd_AppendsInOrder(t *testing.T) {
	tm := newTestManager(t, &memStore{})

	for _, name := range []string{"one", "two", "three"} {
		if _, err := tm.Add(task(name, "non-urgent", "")); err != nil {
			t.Fatalf("Add %s: %v", name, err)
		}
	}
	var names []string
	for _, tk := range tm.Tasks() {
		names = append(names, tk.Name)
	}
	if !reflect.DeepEqual(names, []string{"one", "two", "three"}) {
		t.Errorf("order = %v", names)
	}
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
	}{
		{"blank name", task("  ", "urgent", "")},
		{"pipe in name", task("a | b", "urgent", "")},
		{"newline in name", task("a\nb", "urgent", "")},
		{"blank status", task("a", "", "")},
		{"pipe in status", task("a", "urgent|x", "")},
		{"bad date", task("a", "urgent", "2025-06-01")},
		{"impossible date", task("a", "urgent", "31-02-2025")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			tm := newTestManager(t, store)

			_, err := tm.Add(tt.task)
			if !errors.Is(err, ErrInvalidTask) {
				t.Fatalf("expected ErrInvalidTask, got %v", err)
			}
			if store.commits != 0 || len(tm.Tasks()) != 0 {
				t.Error("invalid task must not be persisted")
			}
		})
	}
}

func TestAdd_DoneIsArchivedImmediately(t *testing.T) {
	store := &memStore{}
	log := &recordingLogger{}
	tm := newTestManager(t, store, WithEventLogger(log))

	if _, err := tm.Add(task("old chore", "done", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(tm.Tasks()) != 0 {
		t.Error("done task should not stay active")
	}
	if len(store.archive) != 1 {
		t.Fatalf("archive = %+v", store.archive)
	}
	if !reflect.DeepEqual(log.types, []string{"task.archived", "task.added", "task.completed"}) {
		t.Errorf("events = %v", log.types)
	}
}

func TestAdd_CommitFailureKeepsMemory(t *testing.T) {
	store := &memStore{active: []models.Task{task("a", "urgent", "")}}
	tm := newTestManager(t, store)
	store.commitErr = errors.New("disk full")

	if _, err := tm.Add(task("b", "urgent", "")); err == nil {
		t.Fatal("expected error")
	}
	if len(tm.Tasks()) != 1 {
		t.Errorf("in-memory list changed on failed commit: %+v", tm.Tasks())
	}
}

// --- Edit ---

func TestEdit_BlankFieldsKeepCurrent(t *testing.T) {
	store := &memStore{active: []models.Task{task("Report", "non-urgent", "01-07-2025")}}
	tm := newTestManager(t, store)

	edited, err := tm.Edit(0, TaskUpdate{Status: "urgent"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if want := task("Report", "urgent", "01-07-2025"); edited != want {
		t.Errorf("edited = %+v, want %+v", edited, want)
	}
	if store.active[0] != edited {
		t.Errorf("store not updated: %+v", store.active)
	}
}

func TestEdit_AllFields(t *testing.T) {
	tm := newTestManager(t, &memStore{active: []models.Task{task("a", "urgent", models.NoDueDate)}})

	edited, err := tm.Edit(0, TaskUpdate{Name: "b", Status: "semi-urgent", DueDate: "02-02-2026"})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if want := task("b", "semi-urgent", "02-02-2026"); edited != want {
		t.Errorf("edited = %+v, want %+v", edited, want)
	}
}

func TestEdit_ToDoneArchives(t *testing.T) {
	store := &memStore{active: []models.Task{
		task("keep", "urgent", ""),
		task("finish", "semi-urgent", "01-06-2025"),
	}}
	log := &recordingLogger{}
	tm := newTestManager(t, store, WithEventLogger(log))

	if _, err := tm.Edit(1, TaskUpdate{Status: "DONE"}); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	if len(tm.Tasks()) != 1 || tm.Tasks()[0].Name != "keep" {
		t.Errorf("active = %+v", tm.Tasks())
	}
	if len(store.archive) != 1 || store.archive[0].CompletionDate != "15-06-2025" {
		t.Errorf("archive = %+v", store.archive)
	}

	last := log.data[len(log.data)-1]
	if log.types[len(log.types)-1] != "task.completed" {
		t.Fatalf("last event = %s", log.types[len(log.types)-1])
	}
	if last["overdue"] != true {
		t.Error("completion after the due date should be flagged overdue")
	}
	if last["old_status"] != "semi-urgent" {
		t.Errorf("old_status = %v", last["old_status"])
	}
}

func TestEdit_InvalidIndex(t *testing.T) {
	tm := newTestManager(t, &memStore{active: []models.Task{task("a", "urgent", "")}})

	for _, idx := range []int{-1, 1, 5} {
		if _, err := tm.Edit(idx, TaskUpdate{Name: "x"}); !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("Edit(%d): expected ErrInvalidSelection, got %v", idx, err)
		}
	}
}

func TestEdit_InvalidDate(t *testing.T) {
	store := &memStore{active: []models.Task{task("a", "urgent", models.NoDueDate)}}
	tm := newTestManager(t, store)

	if _, err := tm.Edit(0, TaskUpdate{DueDate: "tomorrow"}); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
	if store.commits != 0 {
		t.Error("invalid edit must not be persisted")
	}
}

// --- Delete ---

func TestEdit_LegacyFieldsKeptAsLoaded(t *testing.T) {
	store := &memStore{active: []models.Task{
		task("Legacy", "urgent", "2020/01/01"),
		task("a|b", "non-urgent", models.NoDueDate),
	}}
	tm := newTestManager(t, store)

	edited, err := tm.Edit(0, TaskUpdate{Name: "Renamed", Status: "semi-urgent"})
	if err != nil {
		t.Fatalf("renaming a task with a legacy date: %v", err)
	}
	if edited.DueDate != "2020/01/01" || edited.Name != "Renamed" {
		t.Errorf("edited = %+v", edited)
	}

	if _, err := tm.Edit(1, TaskUpdate{Status: "urgent"}); err != nil {
		t.Fatalf("re-prioritizing a task with a legacy name: %v", err)
	}

	if _, err := tm.Edit(0, TaskUpdate{DueDate: "2021/01/01"}); !errors.Is(err, ErrInvalidTask) {
		t.Errorf("a newly entered date is still validated, got %v", err)
	}
	if got := store.active[0]; got.Name != "Renamed" || got.DueDate != "2020/01/01" {
		t.Errorf("store = %+v", got)
	}
}

func TestDelete(t *testing.T) {
	store := &memStore{active: []models.Task{task("a", "urgent", ""), task("b", "urgent", ""), task("c", "urgent", "")}}
	tm := newTestManager(t, store)

	removed, err := tm.Delete(1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.Name != "b" {
		t.Errorf("removed %q, want b", removed.Name)
	}
	if got := tm.Tasks(); len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("remaining = %+v", got)
	}
	if len(store.archive) != 0 {
		t.Error("delete must not archive")
	}
}

func TestDelete_InvalidIndex(t *testing.T) {
	tm := newTestManager(t, &memStore{})
	if _, err := tm.Delete(0); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}
}

// --- MarkComplete ---

func TestMarkComplete(t *testing.T) {
	store := &memStore{active: []models.Task{task("Buy milk", "urgent", "01-01-2020")}}
	log := &recordingLogger{}
	tm := newTestManager(t, store, WithEventLogger(log))

	done, err := tm.MarkComplete(0)
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if done.Status != models.StatusDone {
		t.Errorf("status = %q, want Done", done.Status)
	}
	if len(tm.Tasks()) != 0 {
		t.Error("completed task should leave the active list")
	}
	want := models.ArchivedTask{Task: task("Buy milk", "Done", "01-01-2020"), CompletionDate: "15-06-2025"}
	if len(store.archive) != 1 || store.archive[0] != want {
		t.Errorf("archive = %+v, want %+v", store.archive, want)
	}
	if !reflect.DeepEqual(log.types, []string{"task.archived", "task.completed"}) {
		t.Errorf("events = %v", log.types)
	}
}

func TestMarkComplete_InvalidIndex(t *testing.T) {
	tm := newTestManager(t, &memStore{active: []models.Task{task("a", "urgent", "")}})
	if _, err := tm.MarkComplete(3); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}
}

// --- Flush ---

func TestFlush_ArchivesStrayDoneTasks(t *testing.T) {
	store := &memStore{active: []models.Task{task("a", "urgent", ""), task("b", "done", "")}}
	tm := newTestManager(t, store)

	archived, err := tm.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if archived != 1 {
		t.Errorf("archived = %d, want 1", archived)
	}

	// A second flush is a no-op.
	archived, err = tm.Flush()
	if err != nil || archived != 0 {
		t.Errorf("second Flush = %d, %v", archived, err)
	}
	if len(store.archive) != 1 {
		t.Errorf("archive grew on second flush: %+v", store.archive)
	}
}

func TestFlush_Error(t *testing.T) {
	store := &memStore{}
	tm := newTestManager(t, store)
	store.commitErr = errors.New("read-only")

	if _, err := tm.Flush(); err == nil {
		t.Fatal("expected error")
	}
}

// --- Queries ---

func TestQueries(t *testing.T) {
	store := &memStore{
		active: []models.Task{
			task("Someday", "non-urgent", models.NoDueDate),
			task("Taxes", "semi-urgent", "30-06-2025"),
			task("Dentist", "urgent", "01-06-2025"),
		},
		archive: []models.ArchivedTask{{Task: task("Old", "Done", models.NoDueDate), CompletionDate: "Unknown"}},
	}
	tm := newTestManager(t, store)

	sorted := tm.Sorted()
	if sorted[0].Name != "Dentist" || sorted[2].Name != "Someday" {
		t.Errorf("sorted = %+v", sorted)
	}
	if tm.Tasks()[0].Name != "Someday" {
		t.Error("Sorted must not reorder the stored list")
	}

	if got := tm.Search("TAX"); len(got) != 1 || got[0].Name != "Taxes" {
		t.Errorf("search = %+v", got)
	}

	stats, err := tm.Statistics()
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.ActiveCount != 3 || stats.CompletedCount != 1 || stats.UrgentCount != 1 || stats.OverdueCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.CompletionRate == nil || *stats.CompletionRate != 25 {
		t.Errorf("rate = %v, want 25", stats.CompletionRate)
	}

	archived, err := tm.Archived()
	if err != nil || len(archived) != 1 {
		t.Errorf("Archived = %+v, %v", archived, err)
	}
}

func TestStatistics_ArchiveError(t *testing.T) {
	store := &memStore{}
	tm := newTestManager(t, store)
	store.loadErr = errors.New("unreadable")

	if _, err := tm.Statistics(); err == nil {
		t.Fatal("expected error")
	}
}

func TestEventLoggerFailureIgnored(t *testing.T) {
	log := &recordingLogger{err: errors.New("log unavailable")}
	tm := newTestManager(t, &memStore{}, WithEventLogger(log))

	if _, err := tm.Add(task("a", "urgent", "")); err != nil {
		t.Fatalf("event log failure must not fail Add: %v", err)
	}
	if len(log.types) != 1 || log.types[0] != "task.added" {
		t.Errorf("events = %v", log.types)
	}
}
