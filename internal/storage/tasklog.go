// Package storage persists the active task list and the completed-task
// archive as plain-text, pipe-delimited logs.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/todo/pkg/models"
)

// fieldSep separates the fields of a log line.
const fieldSep = " | "

var (
	// ErrStorageUnavailable is returned when a log exists but cannot be read
	// or written. A missing log is not an error.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformedRecord is returned by the line parsers for lines that lack
	// the minimum field count. Loaders skip such lines.
	ErrMalformedRecord = errors.New("malformed record")
)

// TaskLog reads and writes the active log and the archive log.
type TaskLog struct {
	fs          afero.Fs
	activePath  string
	archivePath string
}

// NewTaskLog creates a TaskLog over the two log paths. A nil fs uses the OS
// filesystem.
func NewTaskLog(fs afero.Fs, activePath, archivePath string) *TaskLog {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TaskLog{
		fs:          fs,
		activePath:  activePath,
		archivePath: archivePath,
	}
}

// ActivePath returns the path of the active log.
func (l *TaskLog) ActivePath() string { return l.activePath }

// ArchivePath returns the path of the archive log.
func (l *TaskLog) ArchivePath() string { return l.archivePath }

// ParseActiveLine parses "name | status [| due_date]".
func ParseActiveLine(line string) (models.Task, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.Task{}, ErrMalformedRecord
	}
	parts := strings.Split(line, fieldSep)
	if len(parts) < 2 {
		return models.Task{}, fmt.Errorf("%w: want at least 2 fields, got %d", ErrMalformedRecord, len(parts))
	}
	task := models.Task{
		Name:    parts[0],
		Status:  models.Status(parts[1]),
		DueDate: models.NoDueDate,
	}
	if len(parts) > 2 {
		task.DueDate = parts[2]
	}
	return task, nil
}

// ParseArchiveLine parses "name | status | due_date [| completion_date]".
func ParseArchiveLine(line string) (models.ArchivedTask, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.ArchivedTask{}, ErrMalformedRecord
	}
	parts := strings.Split(line, fieldSep)
	if len(parts) < 3 {
		return models.ArchivedTask{}, fmt.Errorf("%w: want at least 3 fields, got %d", ErrMalformedRecord, len(parts))
	}
	entry := models.ArchivedTask{
		Task: models.Task{
			Name:    parts[0],
			Status:  models.Status(parts[1]),
			DueDate: parts[2],
		},
		CompletionDate: models.UnknownCompletionDate,
	}
	if len(parts) > 3 {
		entry.CompletionDate = parts[3]
	}
	return entry, nil
}

// FormatActiveLine renders a task as an active log line, without newline.
func FormatActiveLine(t models.Task) string {
	due := t.DueDate
	if due == "" {
		due = models.NoDueDate
	}
	return t.Name + fieldSep + string(t.Status) + fieldSep + due
}

// FormatArchiveLine renders a task and completion date as an archive line.
func FormatArchiveLine(t models.Task, completionDate string) string {
	return FormatActiveLine(t) + fieldSep + completionDate
}

// readLines returns the lines of path. A missing file yields no lines.
func (l *TaskLog) readLines(path string) ([]string, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStorageUnavailable, path, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// LoadActive reads the active log. Blank and malformed lines are skipped.
func (l *TaskLog) LoadActive() ([]models.Task, error) {
	lines, err := l.readLines(l.activePath)
	if err != nil {
		return nil, fmt.Errorf("loading active tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(lines))
	for _, line := range lines {
		task, err := ParseActiveLine(line)
		if err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// LoadArchive reads the archive log. Lines with fewer than three fields are
// skipped.
func (l *TaskLog) LoadArchive() ([]models.ArchivedTask, error) {
	lines, err := l.readLines(l.archivePath)
	if err != nil {
		return nil, fmt.Errorf("loading archive: %w", err)
	}
	entries := make([]models.ArchivedTask, 0, len(lines))
	for _, line := range lines {
		entry, err := ParseArchiveLine(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SaveActive rewrites the active log with every task that is not done. The
// file is replaced through a temp file and rename so a failed write never
// leaves a truncated log behind.
func (l *TaskLog) SaveActive(tasks []models.Task) error {
	var b strings.Builder
	for _, t := range tasks {
		if t.Status.IsDone() {
			continue
		}
		b.WriteString(FormatActiveLine(t))
		b.WriteByte('\n')
	}

	tmpPath := l.activePath + ".tmp"
	if err := afero.WriteFile(l.fs, tmpPath, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("saving active tasks: %w: writing temp file: %w", ErrStorageUnavailable, err)
	}
	if err := l.fs.Rename(tmpPath, l.activePath); err != nil {
		_ = l.fs.Remove(tmpPath)
		return fmt.Errorf("saving active tasks: %w: renaming: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// ArchiveCompleted appends every done task to the archive log stamped with
// now, and returns the remaining tasks in their original order. It does not
// touch the active log. With no done tasks the archive is left untouched.
func (l *TaskLog) ArchiveCompleted(tasks []models.Task, now time.Time) ([]models.Task, error) {
	remaining, done := partition(tasks)
	if len(done) == 0 {
		return remaining, nil
	}

	stamp := models.FormatDate(now)
	var b strings.Builder
	for _, t := range done {
		b.WriteString(FormatArchiveLine(t, stamp))
		b.WriteByte('\n')
	}

	if err := l.appendArchive([]byte(b.String())); err != nil {
		return nil, fmt.Errorf("archiving completed tasks: %w", err)
	}
	return remaining, nil
}

// Commit runs one full save cycle: done tasks are appended to the archive,
// then the remainder is written to the active log. If the active write fails
// the archive is truncated back to its previous size so neither log changes.
func (l *TaskLog) Commit(tasks []models.Task, now time.Time) ([]models.Task, int, error) {
	prevSize, existed, err := l.archiveSize()
	if err != nil {
		return nil, 0, fmt.Errorf("committing tasks: %w", err)
	}

	remaining, err := l.ArchiveCompleted(tasks, now)
	if err != nil {
		return nil, 0, fmt.Errorf("committing tasks: %w", err)
	}
	archived := len(tasks) - len(remaining)

	if err := l.SaveActive(remaining); err != nil {
		if archived > 0 {
			if rbErr := l.rollbackArchive(prevSize, existed); rbErr != nil {
				return nil, 0, fmt.Errorf("committing tasks: %w (archive rollback failed: %v)", err, rbErr)
			}
		}
		return nil, 0, fmt.Errorf("committing tasks: %w", err)
	}
	return remaining, archived, nil
}

func (l *TaskLog) appendArchive(data []byte) error {
	f, err := l.fs.OpenFile(l.archivePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrStorageUnavailable, l.archivePath, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: appending to %s: %w", ErrStorageUnavailable, l.archivePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrStorageUnavailable, l.archivePath, err)
	}
	return nil
}

func (l *TaskLog) archiveSize() (int64, bool, error) {
	info, err := l.fs.Stat(l.archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: stat %s: %w", ErrStorageUnavailable, l.archivePath, err)
	}
	return info.Size(), true, nil
}

func (l *TaskLog) rollbackArchive(size int64, existed bool) error {
	if !existed {
		return l.fs.Remove(l.archivePath)
	}
	f, err := l.fs.OpenFile(l.archivePath, os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.Truncate(size); err != nil {
		return err
	}
	_, err = f.Seek(size, io.SeekStart)
	return err
}

// partition splits tasks into not-done and done, preserving order.
func partition(tasks []models.Task) (remaining, done []models.Task) {
	remaining = make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status.IsDone() {
			done = append(done, t)
			continue
		}
		remaining = append(remaining, t)
	}
	return remaining, done
}
