package models

import (
	"strings"
	"time"
)

// DateLayout is the DD-MM-YYYY format used for due and completion dates.
const DateLayout = "02-01-2006"

// DateInputLayout parses dates with one- or two-digit day and month, so
// "1-1-2020" and "01-01-2020" are the same date.
const DateInputLayout = "2-1-2006"

// NoDueDate is the sentinel stored in place of a due date.
const NoDueDate = "No due date"

// UnknownCompletionDate is used for archive records that predate completion stamps.
const UnknownCompletionDate = "Unknown"

// Status is the urgency status of a task as the user typed it. The raw text
// is preserved on disk; behavior is driven by Kind.
type Status string

// Canonical status spellings.
const (
	StatusUrgent     Status = "urgent"
	StatusSemiUrgent Status = "semi-urgent"
	StatusNonUrgent  Status = "non-urgent"
	StatusDone       Status = "Done"
)

// StatusKind is the normalized form of a Status.
type StatusKind int

const (
	KindUrgent StatusKind = iota
	KindSemiUrgent
	KindNonUrgent
	KindDone
	KindOther
)

// Kind normalizes the status case-insensitively. Every component that
// inspects a status goes through here.
func (s Status) Kind() StatusKind {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "urgent":
		return KindUrgent
	case "semi-urgent":
		return KindSemiUrgent
	case "non-urgent":
		return KindNonUrgent
	case "done":
		return KindDone
	default:
		return KindOther
	}
}

// IsDone reports whether the status is "done" in any letter case.
func (s Status) IsDone() bool {
	return s.Kind() == KindDone
}

// Priority returns the urgency rank used as the sort tie-breaker
// (lower number sorts first).
func (k StatusKind) Priority() int {
	switch k {
	case KindUrgent:
		return 1
	case KindSemiUrgent:
		return 2
	case KindNonUrgent:
		return 3
	case KindDone:
		return 4
	default:
		return 5
	}
}

func (k StatusKind) String() string {
	switch k {
	case KindUrgent:
		return "urgent"
	case KindSemiUrgent:
		return "semi-urgent"
	case KindNonUrgent:
		return "non-urgent"
	case KindDone:
		return "done"
	default:
		return "other"
	}
}

// Task is a single entry of the active task list. It has no stable id; its
// identity is its position in the list.
type Task struct {
	Name    string `json:"name" yaml:"name" validate:"required,taskname"`
	Status  Status `json:"status" yaml:"status" validate:"required"`
	DueDate string `json:"due_date" yaml:"due_date" validate:"duedate"`
}

// HasDueDate reports whether the task carries a date rather than the sentinel.
func (t Task) HasDueDate() bool {
	return t.DueDate != "" && t.DueDate != NoDueDate
}

// ArchivedTask is a completed task as recorded in the archive log.
type ArchivedTask struct {
	Task           `yaml:",inline"`
	CompletionDate string `json:"completion_date" yaml:"completion_date"`
}

// ParseDueDate parses a DD-MM-YYYY (or D-M-YYYY) date at midnight in loc. It returns false
// for the sentinel, blank input, or anything that does not parse.
func ParseDueDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == NoDueDate {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateInputLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
