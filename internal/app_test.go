package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/todo/internal/cli"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, core.ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveBasePath_FindsTodoconfig(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o750); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, tmpDir, "display:\n  color: false\n")
	chdir(t, subDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find .todoconfig in parent)", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	chdir(t, tmpDir)

	got := ResolveBasePath()
	// An ancestor of the temp dir may carry its own .todoconfig.
	if got != tmpDir && !strings.HasPrefix(tmpDir, got) {
		t.Errorf("ResolveBasePath() = %q, want %q or an ancestor", got, tmpDir)
	}
}

func TestNewApp_WiresDefaults(t *testing.T) {
	dir := t.TempDir()

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.TaskLog.ActivePath() != filepath.Join(dir, "tasks.txt") {
		t.Errorf("active path = %q", app.TaskLog.ActivePath())
	}
	if app.TaskLog.ArchivePath() != filepath.Join(dir, "completed_tasks.txt") {
		t.Errorf("archive path = %q", app.TaskLog.ArchivePath())
	}
	if app.EventLog == nil || app.MetricsCalc == nil {
		t.Error("event log and metrics should be wired by default")
	}
	if app.AlertEngine == nil || app.ProjectInit == nil {
		t.Error("alert engine and initializer should always be wired")
	}
	if cli.TaskMgr != app.TaskMgr || cli.Config != app.Config || cli.BasePath != dir {
		t.Error("cli package variables not wired")
	}
}

func TestNewApp_LoadsExistingTasksAndLogsEvents(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tasks.txt"), []byte("Pay rent | urgent | 01-01-2020\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer func() { _ = app.Close() }()

	if tasks := app.TaskMgr.Tasks(); len(tasks) != 1 || tasks[0].Name != "Pay rent" {
		t.Fatalf("loaded tasks = %+v", tasks)
	}
	if _, err := app.TaskMgr.MarkComplete(0); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Type: "task.completed"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 completion event, got %d", len(events))
	}
	if events[0].Level != observability.LevelWarn {
		t.Errorf("overdue completion level = %q, want WARN", events[0].Level)
	}

	data, err := os.ReadFile(filepath.Join(dir, "completed_tasks.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Pay rent | Done | 01-01-2020 | ") {
		t.Errorf("archive = %q", data)
	}
}

func TestNewApp_EventsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "events:\n  enabled: false\n")

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.EventLog != nil || app.MetricsCalc != nil {
		t.Error("event log should not be opened when disabled")
	}
	if app.AlertEngine == nil {
		t.Error("alert engine should be wired without events")
	}
	if _, err := os.Stat(filepath.Join(dir, ".todo_events.jsonl")); !os.IsNotExist(err) {
		t.Errorf("event log file created while disabled: %v", err)
	}
}

func TestNewApp_UnopenableEventLogIsNonFatal(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "events:\n  path: missing/dir/events.jsonl\n")

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.EventLog != nil {
		t.Error("expected no event log when its directory is missing")
	}
}

func TestNewApp_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"invalid yaml", "files: [unclosed\n"},
		{"done default status", "defaults:\n  status: Done\n"},
		{"negative retries", "prompt:\n  max_retries: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.config)

			if _, err := NewApp(dir); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestNewApp_MemFs(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, filepath.Join(dir, "tasks.txt"), []byte("In memory | non-urgent\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, "events:\n  enabled: false\n")

	app, err := newApp(dir, fs)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	if tasks := app.TaskMgr.Tasks(); len(tasks) != 1 || tasks[0].DueDate != models.NoDueDate {
		t.Errorf("tasks = %+v", tasks)
	}
	if _, err := os.Stat(filepath.Join(dir, "tasks.txt")); !os.IsNotExist(err) {
		t.Error("task log should be read from the injected filesystem")
	}
}

func TestNewApp_MemFsEventLog(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewMemMapFs()

	app, err := newApp(dir, fs)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.EventLog == nil {
		t.Fatal("event log should open on the injected filesystem")
	}
	if _, err := app.TaskMgr.Add(models.Task{Name: "Walk dog", Status: models.StatusUrgent}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	eventsPath := filepath.Join(dir, ".todo_events.jsonl")
	data, err := afero.ReadFile(fs, eventsPath)
	if err != nil {
		t.Fatalf("reading event log from memory: %v", err)
	}
	if !strings.Contains(string(data), `"task.added"`) {
		t.Errorf("event log = %q", data)
	}
	if _, err := os.Stat(eventsPath); !os.IsNotExist(err) {
		t.Error("event log should not touch the real filesystem")
	}
}

type captureLog struct {
	events []observability.Event
}

func (c *captureLog) Write(e observability.Event) error {
	c.events = append(c.events, e)
	return nil
}

func (c *captureLog) Read(observability.EventFilter) ([]observability.Event, error) {
	return c.events, nil
}

func (c *captureLog) Close() error { return nil }

func TestEventLogAdapter_Levels(t *testing.T) {
	log := &captureLog{}
	adapter := &eventLogAdapter{log: log}

	_ = adapter.LogEvent("task.added", map[string]any{"name": "a"})
	_ = adapter.LogEvent("task.completed", map[string]any{"name": "b", "overdue": false})
	_ = adapter.LogEvent("task.completed", map[string]any{"name": "c", "overdue": true})

	want := []string{observability.LevelInfo, observability.LevelInfo, observability.LevelWarn}
	for i, e := range log.events {
		if e.Level != want[i] {
			t.Errorf("event %d level = %q, want %q", i, e.Level, want[i])
		}
		if e.Type != e.Message {
			t.Errorf("event %d message = %q, want type %q", i, e.Message, e.Type)
		}
	}
}
