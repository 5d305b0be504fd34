package cli

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/storage"
)

// testNow is the fixed clock used by CLI tests.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const (
	testActivePath  = "/work/tasks.txt"
	testArchivePath = "/work/completed_tasks.txt"
)

// setupTaskMgr points the package-level TaskMgr and Config at a task
// manager over an in-memory filesystem seeded with active and archive.
// Color output is disabled. Everything is restored when the test ends.
func setupTaskMgr(t *testing.T, active, archive string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if active != "" {
		if err := afero.WriteFile(fs, testActivePath, []byte(active), 0o600); err != nil {
			t.Fatalf("seeding active log: %v", err)
		}
	}
	if archive != "" {
		if err := afero.WriteFile(fs, testArchivePath, []byte(archive), 0o600); err != nil {
			t.Fatalf("seeding archive log: %v", err)
		}
	}

	tm := core.NewTaskManager(
		storage.NewTaskLog(fs, testActivePath, testArchivePath),
		core.WithClock(func() time.Time { return testNow }),
	)
	if err := tm.Load(); err != nil {
		t.Fatalf("loading tasks: %v", err)
	}

	origMgr, origCfg, origNoColor := TaskMgr, Config, noColor
	t.Cleanup(func() {
		TaskMgr, Config, noColor = origMgr, origCfg, origNoColor
	})

	TaskMgr = tm
	Config = core.DefaultGlobalConfig()
	noColor = true
	return fs
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// captureStdout captures stdout output during fn execution.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("creating pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = origStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading pipe: %v", err)
	}
	return string(out)
}

// runMenuScript feeds lines to the interactive menu and returns its output.
func runMenuScript(t *testing.T, lines ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := runMenu(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	return out.String(), err
}
