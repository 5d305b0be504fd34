package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// TaskSource provides the current active list and the clock it is judged
// against. core.TaskManager satisfies it.
type TaskSource interface {
	Tasks() []models.Task
	Now() time.Time
}

// AlertEngine evaluates alert conditions against the active list and the
// event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine. A zero threshold disables its check.
type alertEngine struct {
	tasks      TaskSource
	eventLog   EventLog
	thresholds models.AlertConfig
}

// NewAlertEngine creates a new AlertEngine. eventLog may be nil when event
// logging is disabled; the idle check is then skipped.
func NewAlertEngine(tasks TaskSource, eventLog EventLog, thresholds models.AlertConfig) AlertEngine {
	return &alertEngine{
		tasks:      tasks,
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// Evaluate checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.tasks.Now()
	all := ae.tasks.Tasks()
	active := core.FilterIncomplete(all)

	var alerts []Alert
	alerts = append(alerts, ae.checkOverdue(all, now)...)
	alerts = append(alerts, ae.checkUrgentCount(active, now)...)

	idle, err := ae.checkIdle(active, now)
	if err != nil {
		return nil, fmt.Errorf("checking recent completions: %w", err)
	}
	alerts = append(alerts, idle...)

	alerts = append(alerts, ae.checkActiveCount(active, now)...)
	return alerts, nil
}

// checkOverdue raises one alert per task past its due date. IDs carry the
// task's 1-based list position.
func (ae *alertEngine) checkOverdue(tasks []models.Task, now time.Time) []Alert {
	var alerts []Alert
	for i, t := range tasks {
		if !core.TaskOverdue(t, now) {
			continue
		}
		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("overdue-%d", i+1),
			Condition:   "task_overdue",
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("task %q was due on %s", t.Name, t.DueDate),
			TriggeredAt: now,
		})
	}
	return alerts
}

func (ae *alertEngine) checkUrgentCount(active []models.Task, now time.Time) []Alert {
	if ae.thresholds.MaxUrgent <= 0 {
		return nil
	}
	urgent := 0
	for _, t := range active {
		if t.Status.Kind() == models.KindUrgent {
			urgent++
		}
	}
	if urgent <= ae.thresholds.MaxUrgent {
		return nil
	}
	return []Alert{{
		ID:          "urgent-count",
		Condition:   "too_many_urgent",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("%d urgent tasks, exceeding the maximum of %d", urgent, ae.thresholds.MaxUrgent),
		TriggeredAt: now,
	}}
}

// checkIdle fires when tasks are waiting and nothing has been completed
// within the idle window. It stays quiet until the event log covers the
// whole window, so a fresh log does not alert.
func (ae *alertEngine) checkIdle(active []models.Task, now time.Time) ([]Alert, error) {
	if ae.eventLog == nil || ae.thresholds.IdleDays <= 0 || len(active) == 0 {
		return nil, nil
	}

	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	cutoff := now.Add(-time.Duration(ae.thresholds.IdleDays) * 24 * time.Hour)
	if events[0].Time.After(cutoff) {
		return nil, nil
	}
	for _, e := range events {
		if e.Type == EventTaskCompleted && !e.Time.Before(cutoff) {
			return nil, nil
		}
	}

	return []Alert{{
		ID:          "idle",
		Condition:   "no_recent_completion",
		Severity:    SeverityMedium,
		Message:     fmt.Sprintf("no task completed in the last %d days, %d still active", ae.thresholds.IdleDays, len(active)),
		TriggeredAt: now,
	}}, nil
}

func (ae *alertEngine) checkActiveCount(active []models.Task, now time.Time) []Alert {
	if ae.thresholds.MaxActive <= 0 || len(active) <= ae.thresholds.MaxActive {
		return nil
	}
	return []Alert{{
		ID:          "active-count",
		Condition:   "too_many_active",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("%d active tasks, exceeding the maximum of %d", len(active), ae.thresholds.MaxActive),
		TriggeredAt: now,
	}}
}
