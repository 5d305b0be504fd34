package observability

import (
	"fmt"
	"time"
)

// Metrics holds activity counts derived from the event log.
type Metrics struct {
	TasksAdded         int            `json:"tasks_added"`
	TasksEdited        int            `json:"tasks_edited"`
	TasksDeleted       int            `json:"tasks_deleted"`
	TasksCompleted     int            `json:"tasks_completed"`
	CompletedLate      int            `json:"completed_late"`
	TasksArchived      int            `json:"tasks_archived"`
	CompletedByUrgency map[string]int `json:"completed_by_urgency"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		CompletedByUrgency: make(map[string]int),
	}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventTaskAdded:
			m.TasksAdded++
		case EventTaskEdited:
			m.TasksEdited++
		case EventTaskDeleted:
			m.TasksDeleted++
		case EventTaskCompleted:
			m.TasksCompleted++
			if late, ok := event.Data["overdue"].(bool); ok && late {
				m.CompletedLate++
			}
			if from, ok := event.Data["old_status"].(string); ok && from != "" {
				m.CompletedByUrgency[from]++
			}
		case EventTaskArchived:
			// count is decoded from JSON as float64.
			if n, ok := event.Data["count"].(float64); ok {
				m.TasksArchived += int(n)
			}
		}
	}

	return m, nil
}
