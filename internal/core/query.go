package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/todo/pkg/models"
)

var (
	// ErrInvalidSelection is returned for an index outside the active list.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidInput is returned for non-numeric input where a number is required.
	ErrInvalidInput = errors.New("invalid input")
)

// Statistics summarizes the active list and the archive.
type Statistics struct {
	ActiveCount    int      `json:"active_count" yaml:"active_count"`
	CompletedCount int      `json:"completed_count" yaml:"completed_count"`
	TotalCount     int      `json:"total_count" yaml:"total_count"`
	UrgentCount    int      `json:"urgent_count" yaml:"urgent_count"`
	OverdueCount   int      `json:"overdue_count" yaml:"overdue_count"`
	CompletionRate *float64 `json:"completion_rate,omitempty" yaml:"completion_rate,omitempty"`
}

// Sort orders tasks by due date ascending (undated last), then by urgency
// priority. The sort is stable and the input is not modified.
func Sort(tasks []models.Task) []models.Task {
	type keyed struct {
		task  models.Task
		due   time.Time
		dated bool
		prio  int
	}
	keys := make([]keyed, len(tasks))
	for i, t := range tasks {
		due, ok := models.ParseDueDate(t.DueDate, time.UTC)
		keys[i] = keyed{task: t, due: due, dated: ok, prio: t.Status.Kind().Priority()}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.dated != b.dated {
			return a.dated
		}
		if a.dated && !a.due.Equal(b.due) {
			return a.due.Before(b.due)
		}
		return a.prio < b.prio
	})

	out := make([]models.Task, len(keys))
	for i, k := range keys {
		out[i] = k.task
	}
	return out
}

// FilterIncomplete returns the tasks whose status is not done.
func FilterIncomplete(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if !t.Status.IsDone() {
			out = append(out, t)
		}
	}
	return out
}

// FilterCompleted returns the tasks whose status is done.
func FilterCompleted(tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Status.IsDone() {
			out = append(out, t)
		}
	}
	return out
}

// Search returns the tasks whose name contains term, case-insensitively,
// in sorted order.
func Search(tasks []models.Task, term string) []models.Task {
	needle := strings.ToLower(term)
	var matches []models.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			matches = append(matches, t)
		}
	}
	return Sort(matches)
}

// IsOverdue reports whether due is strictly before asOf. The sentinel and
// unparseable dates are never overdue.
func IsOverdue(due string, asOf time.Time) bool {
	d, ok := models.ParseDueDate(due, asOf.Location())
	if !ok {
		return false
	}
	return d.Before(asOf)
}

// TaskOverdue reports whether a task is past due and not done.
func TaskOverdue(t models.Task, asOf time.Time) bool {
	return !t.Status.IsDone() && IsOverdue(t.DueDate, asOf)
}

// ComputeStatistics aggregates counts over the active list and the archive.
// CompletionRate is nil when there are no tasks at all.
func ComputeStatistics(active []models.Task, archived []models.ArchivedTask, asOf time.Time) Statistics {
	s := Statistics{
		ActiveCount:    len(active),
		CompletedCount: len(archived),
	}
	s.TotalCount = s.ActiveCount + s.CompletedCount

	for _, t := range active {
		if t.Status.Kind() == models.KindUrgent {
			s.UrgentCount++
		}
		if TaskOverdue(t, asOf) {
			s.OverdueCount++
		}
	}

	if s.TotalCount > 0 {
		rate := float64(s.CompletedCount) / float64(s.TotalCount) * 100
		s.CompletionRate = &rate
	}
	return s
}

// ParseSelection converts a 1-based user answer into a 0-based index into a
// list of count items.
func ParseSelection(raw string, count int) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
	}
	if n < 1 || n > count {
		return -1, fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidSelection, n, count)
	}
	return n - 1, nil
}
